package httpapi

import "github.com/HyperCol/taipo-fire-php-re/internal/domain"

// FailResult error envelope shared by every endpoint
type FailResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func Fail(message string) FailResult {
	return FailResult{Success: false, Error: message}
}

type OkResult struct {
	Success bool `json:"success"`
}

func Ok() OkResult {
	return OkResult{Success: true}
}

type LoginResult struct {
	Success bool               `json:"success"`
	User    domain.SessionUser `json:"user"`
}

type CheckResult struct {
	Authenticated bool                `json:"authenticated"`
	User          *domain.SessionUser `json:"user,omitempty"`
}

type UnitsResult struct {
	Units domain.BlockUnits `json:"units"`
}

type UpsertResult struct {
	Success bool              `json:"success"`
	Record  domain.UnitRecord `json:"record"`
}

type CreatedResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}
