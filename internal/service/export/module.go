package export

import (
	"go.uber.org/fx"

	repo "github.com/Additional-Code/procura/internal/repository/procurement"
)

// Module provides the export service to Fx.
var Module = fx.Options(
	fx.Provide(NewService),
	fx.Provide(func(r *repo.Repository) Source { return r }),
)
