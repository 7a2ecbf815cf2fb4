package httpgin

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type PaymentProofRequest struct {
	PaymentProofURL string `json:"payment_proof_url" binding:"required,max=2048"`
}

type VerifyRequest struct {
	Action string `json:"action" binding:"required"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"max=200"`
}

type CourtStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type FeaturedRequest struct {
	Featured *bool `json:"is_featured" binding:"required"`
}

type ReviewRequest struct {
	Action string `json:"action" binding:"required"`
}

type TournamentReviewRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason" binding:"max=500"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
