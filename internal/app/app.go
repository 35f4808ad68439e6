package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/procura/internal/cache"
	"github.com/Additional-Code/procura/internal/config"
	"github.com/Additional-Code/procura/internal/database"
	"github.com/Additional-Code/procura/internal/logger"
	"github.com/Additional-Code/procura/internal/messaging"
	"github.com/Additional-Code/procura/internal/observability"
	repositoryprocurement "github.com/Additional-Code/procura/internal/repository/procurement"
	repositoryuser "github.com/Additional-Code/procura/internal/repository/user"
	grpcserver "github.com/Additional-Code/procura/internal/server/grpc"
	httpserver "github.com/Additional-Code/procura/internal/server/http"
	serviceauth "github.com/Additional-Code/procura/internal/service/auth"
	serviceexport "github.com/Additional-Code/procura/internal/service/export"
	serviceprocurement "github.com/Additional-Code/procura/internal/service/procurement"
	transporthttp "github.com/Additional-Code/procura/internal/transport/http"
	"github.com/Additional-Code/procura/internal/worker"
	workerprocurement "github.com/Additional-Code/procura/internal/worker/procurement"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	repositoryprocurement.Module,
	repositoryuser.Module,
	serviceprocurement.Module,
	serviceexport.Module,
	serviceauth.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerprocurement.Module,
)

// Module is the default application wiring: HTTP API plus the gRPC health endpoint.
var Module = fx.Options(
	HTTP,
	grpcserver.Module,
)
