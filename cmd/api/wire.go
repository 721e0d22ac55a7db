//go:build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/strawberryfields/strawberryfields/x/activitypub"
	"github.com/strawberryfields/strawberryfields/x/key"
	"github.com/strawberryfields/strawberryfields/x/util"
)

func SetupActivityPubHandler(km *key.Material, config util.Config) *activitypub.Handler {
	wire.Build(activitypub.NewHandler, activitypub.NewSigner, activitypub.NewClient)
	return &activitypub.Handler{}
}
