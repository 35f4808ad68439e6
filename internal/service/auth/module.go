package auth

import (
	"go.uber.org/fx"

	repouser "github.com/Additional-Code/procura/internal/repository/user"
)

// Module provides the authentication service to Fx.
var Module = fx.Options(
	fx.Provide(NewService),
	fx.Provide(func(r *repouser.Repository) Users { return r }),
)
