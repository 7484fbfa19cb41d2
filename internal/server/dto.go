package server

import "recipehub/internal/models"

type registerRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
	Bio      string `json:"bio" validate:"max=500"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type createPostRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Ingredients string   `json:"ingredients" validate:"required"`
	Recipe      string   `json:"recipe"`
	RecipeTime  int      `json:"recipe_time" validate:"gte=0"`
	Tags        []string `json:"tags" validate:"dive,recipetag"`
	ImageData   string   `json:"image_data"`
}

type rateRequest struct {
	Kind  string   `json:"kind" validate:"required,oneof=difficulty price overall"`
	Score *float64 `json:"score" validate:"required"`
}

type commentRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}

type imageRequest struct {
	ImageData string `json:"image_data" validate:"required"`
	OwnerType string `json:"owner_type" validate:"required,oneof=user post"`
	OwnerID   uint   `json:"owner_id" validate:"required"`
}
