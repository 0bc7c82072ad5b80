package controller

import (
	"bookreview-be/internal/pkg/apperror"
	"bookreview-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func parseAndValidate(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	return serverutils.ValidateRequest(req)
}

func uuidParam(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, apperror.BadRequest("Invalid %s", name)
	}
	return id, nil
}

// actorAndParam reads the authenticated user and a uuid path parameter.
func actorAndParam(ctx *fiber.Ctx, name string) (uuid.UUID, uuid.UUID, error) {
	actorId, err := serverutils.CurrentUserId(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := uuidParam(ctx, name)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return actorId, id, nil
}
