package http

import (
	"go.uber.org/fx"

	authtransport "github.com/Additional-Code/procura/internal/transport/http/auth"
	exporttransport "github.com/Additional-Code/procura/internal/transport/http/export"
	procurementtransport "github.com/Additional-Code/procura/internal/transport/http/procurement"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	authtransport.Module,
	procurementtransport.Module,
	exporttransport.Module,
)
