package dto

type SubmitRatingRequest struct {
	Score    *int   `json:"score"`
	Feedback string `json:"feedback"`
}
