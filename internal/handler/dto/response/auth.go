package response

import "salon-booking-api/internal/usecase/queries"

type LoginResponse struct {
	AccessToken string             `json:"access_token"`
	Staff       *queries.StaffView `json:"staff"`
}
