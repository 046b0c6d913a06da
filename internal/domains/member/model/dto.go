package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type CreateMemberRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (r CreateMemberRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.By(notBlank("Name is required")),
			validation.Length(1, 255),
		),
		validation.Field(&r.Email, is.EmailFormat, validation.Length(0, 255)),
		validation.Field(&r.Phone, validation.Length(0, 50)),
		validation.Field(&r.Address, validation.Length(0, 500)),
	)
}

func (r CreateMemberRequest) ToMember() *Member {
	return &Member{
		Name:    strings.TrimSpace(r.Name),
		Email:   strings.TrimSpace(r.Email),
		Phone:   strings.TrimSpace(r.Phone),
		Address: strings.TrimSpace(r.Address),
	}
}

// UpdateMemberRequest is the body of PUT /api/members/:id. Nil fields are left unchanged.
type UpdateMemberRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (r UpdateMemberRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.By(notBlank("Name cannot be empty")), validation.Length(1, 255)),
		validation.Field(&r.Email, is.EmailFormat, validation.Length(0, 255)),
		validation.Field(&r.Phone, validation.Length(0, 50)),
		validation.Field(&r.Address, validation.Length(0, 500)),
	)
}

// Apply merges the request into m. JoinDate is never touched.
func (r UpdateMemberRequest) Apply(m *Member) {
	if r.Name != nil {
		m.Name = strings.TrimSpace(*r.Name)
	}
	if r.Email != nil {
		m.Email = strings.TrimSpace(*r.Email)
	}
	if r.Phone != nil {
		m.Phone = strings.TrimSpace(*r.Phone)
	}
	if r.Address != nil {
		m.Address = strings.TrimSpace(*r.Address)
	}
}

// notBlank rejects whitespace-only strings. Nil pointers pass.
func notBlank(msg string) validation.RuleFunc {
	return func(value interface{}) error {
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case *string:
			if v == nil {
				return nil
			}
			s = *v
		default:
			return nil
		}
		if strings.TrimSpace(s) == "" {
			return validation.NewError("validation_blank", msg)
		}
		return nil
	}
}
