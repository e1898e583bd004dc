package models

import "errors"

// Доменные ошибки. Сравниваются через errors.Is.
var (
	ErrClientNotFound     = errors.New("client not found")
	ErrPlanNotFound       = errors.New("plan not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrNoPlans            = errors.New("no plans available")
	ErrPlanRequired       = errors.New("plan_id is required")
	ErrDuplicateIDCard    = errors.New("id card already registered")
	ErrNotEligible        = errors.New("client has no active membership")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidMonths      = errors.New("plan months must be one of 1, 3, 6, 12")
	ErrInvalidPeriod      = errors.New("'to' date must not be before 'from' date")
	ErrImage              = errors.New("failed to read or encode picture")
	ErrPhotoIO            = errors.New("failed to store picture")
)
