package types

type InputAddressInfo struct {
	Email  string `form:"email" validate:"required,email"`
	Issuer string `form:"issuer" validate:"omitempty,max=255"`
}

type InputAssertion struct {
	Assertion string `json:"assertion" validate:"required"`
}

type InputCompleteTransition struct {
	Email     string `json:"email" validate:"required,email"`
	Assertion string `json:"assertion" validate:"required"`
}
