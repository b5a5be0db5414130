package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hrygo/creastudio/envelope"
)

// CompanyService manages the business profile used as generation context.
type CompanyService struct {
	c *Client
}

type companyResponse struct {
	Success     *bool        `json:"success"`
	CompanyInfo *CompanyInfo `json:"company_info"`
}

func decodeCompany(body []byte) *companyResponse {
	out := &companyResponse{}
	_ = json.Unmarshal(body, out)
	return out
}

func companyNotFound[T any]() statusRule[T] {
	return notFound[T]("Company information", "No company information has been configured")
}

func (s *CompanyService) Get(ctx context.Context) *envelope.Response[CompanyInfo] {
	const op = "company-get"
	body, err := s.c.do(ctx, &request{method: http.MethodGet, path: pathCompanyInfo, endpoint: op})
	if err != nil {
		return record(s.c, op, translate(err, companyNotFound[CompanyInfo]()))
	}
	resp := decodeCompany(body)
	if resp.CompanyInfo == nil {
		return record(s.c, op, envelope.InvalidResponse[CompanyInfo]("The server did not return valid information"))
	}
	return record(s.c, op, envelope.Success(*resp.CompanyInfo, "Company information loaded successfully", nil))
}

// Exists reports whether the account has a company profile.
func (s *CompanyService) Exists(ctx context.Context) bool {
	return s.Get(ctx).IsSuccess()
}

// Create fails with ALREADY_EXISTS when the account already has a profile.
func (s *CompanyService) Create(ctx context.Context, in *CompanyInfoInput) *envelope.Response[CompanyInfo] {
	const op = "company-create"
	req, err := jsonRequest(http.MethodPost, pathCompanyInfo, op, in)
	if err != nil {
		return record(s.c, op, envelope.Error[CompanyInfo](envelope.CodeInternal, "Could not build request",
			envelope.WithDetails(err.Error())))
	}
	body, err := s.c.do(ctx, req)
	if err != nil {
		return record(s.c, op, translate(err,
			on(http.StatusBadRequest, func(*envelope.ErrorPayload) *envelope.Response[CompanyInfo] {
				return envelope.AlreadyExists[CompanyInfo]("Company information",
					"Company information has already been configured for this account")
			}),
			invalidFields[CompanyInfo]("Invalid company data", "Check that every field is correct"),
		))
	}
	resp := decodeCompany(body)
	if resp.CompanyInfo == nil {
		return record(s.c, op, envelope.InvalidResponse[CompanyInfo]("The server did not return valid information"))
	}
	return record(s.c, op, envelope.Success(*resp.CompanyInfo, "Company information created successfully", nil))
}

// Update changes the fields set on in. When the backend only acknowledges
// the update, the profile is fetched again; if that refetch fails the update
// is reported as a warning carrying no data.
func (s *CompanyService) Update(ctx context.Context, in *CompanyInfoInput) *envelope.Response[CompanyInfo] {
	const op = "company-update"
	req, err := jsonRequest(http.MethodPut, pathCompanyInfo, op, in)
	if err != nil {
		return record(s.c, op, envelope.Error[CompanyInfo](envelope.CodeInternal, "Could not build request",
			envelope.WithDetails(err.Error())))
	}
	body, err := s.c.do(ctx, req)
	if err != nil {
		return record(s.c, op, translate(err,
			companyNotFound[CompanyInfo](),
			invalidFields[CompanyInfo]("Invalid company data", "Check that every field is correct"),
		))
	}

	const updated = "Company information updated successfully"
	resp := decodeCompany(body)
	switch {
	case resp.CompanyInfo != nil:
		return record(s.c, op, envelope.Success(*resp.CompanyInfo, updated, nil))
	case resp.Success != nil && *resp.Success:
		fresh := s.Get(ctx)
		if fresh.IsSuccess() {
			return record(s.c, op, envelope.Success(fresh.Data, updated, nil))
		}
		return record(s.c, op, envelope.Warning(updated,
			[]string{"The updated information could not be reloaded: " + fresh.Message}, CompanyInfo{}))
	default:
		return record(s.c, op, envelope.InvalidResponse[CompanyInfo]("The server did not confirm the update"))
	}
}

func (s *CompanyService) Delete(ctx context.Context) *envelope.Response[struct{}] {
	const op = "company-delete"
	body, err := s.c.do(ctx, &request{method: http.MethodDelete, path: pathCompanyInfo, endpoint: op})
	if err != nil {
		return record(s.c, op, translate(err, companyNotFound[struct{}]()))
	}
	resp := decodeCompany(body)
	if resp.Success == nil || !*resp.Success {
		return record(s.c, op, envelope.InvalidResponse[struct{}]("The server did not confirm the deletion"))
	}
	return record(s.c, op, envelope.Success(struct{}{}, "Company information deleted successfully", nil))
}
