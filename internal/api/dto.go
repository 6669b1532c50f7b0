package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/metron/internal/catalog"
	"github.com/starford/metron/internal/conversionservice"
	"github.com/starford/metron/internal/engine"
	"github.com/starford/metron/internal/models"
	"github.com/starford/metron/internal/parser"
)

// CategoryInfo describes a category (aliased from the domain layer).
type CategoryInfo = conversionservice.CategoryInfo

// CategoriesResponse lists every category in display order.
type CategoriesResponse struct {
	Categories []CategoryInfo `json:"categories" validate:"required"`
}

// UnitsResponse lists the units of one category.
type UnitsResponse struct {
	Category string         `json:"category" example:"length" validate:"required"`
	Units    []catalog.Unit `json:"units" validate:"required"`
}

// Value accepts either a JSON number or a string. Strings are read the way a
// browser number field is: the longest numeric prefix, or 0.
type Value float64

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(parser.ParseValue(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("value must be a number or numeric string")
	}
	*v = Value(f)
	return nil
}

// ConvertRequest is the request body for POST /convert and POST /history.
type ConvertRequest struct {
	Category string `json:"category" example:"length" validate:"required"`
	From     string `json:"from" example:"meter" validate:"required"`
	To       string `json:"to" example:"foot" validate:"required"`
	Value    Value  `json:"value" example:"10"`
	// Swap exchanges From and To before converting.
	Swap bool `json:"swap,omitempty"`
}

// Validate implements validation.Validatable.
func (r *ConvertRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Category, validation.Required),
		validation.Field(&r.From, validation.Required),
		validation.Field(&r.To, validation.Required),
	)
}

func (r *ConvertRequest) engineRequest() engine.Request {
	req := engine.Request{Category: r.Category, From: r.From, To: r.To, Value: float64(r.Value)}
	if r.Swap {
		req = req.Swap()
	}
	return req
}

// ConvertResponse is a completed conversion.
type ConvertResponse struct {
	Category string  `json:"category" example:"length"`
	From     string  `json:"from" example:"meter"`
	To       string  `json:"to" example:"foot"`
	Value    float64 `json:"value" example:"10"`
	Result   float64 `json:"result" example:"32.8084"`
	Display  string  `json:"display" example:"32.8084"`
	Formula  string  `json:"formula" example:"10 meter = 32.8084 foot"`
	Fallback bool    `json:"fallback,omitempty"`
}

func newConvertResponse(res engine.Result) ConvertResponse {
	return ConvertResponse{
		Category: res.Request.Category,
		From:     res.Request.From,
		To:       res.Request.To,
		Value:    res.Request.Value,
		Result:   res.Converted,
		Display:  engine.FormatValue(res.Converted),
		Formula:  res.Formula,
		Fallback: res.Fallback,
	}
}

// SignUpRequest is the request body for POST /auth/signup.
type SignUpRequest struct {
	Email    string `json:"email" example:"ada@example.com" validate:"required"`
	Password string `json:"password" example:"secret1" validate:"required"`
	Name     string `json:"name" example:"Ada" validate:"required"`
}

// Validate implements validation.Validatable. Length rules live in the
// account service.
func (r *SignUpRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Name, validation.Required),
	)
}

// SignInRequest is the request body for POST /auth/signin.
type SignInRequest struct {
	Email    string `json:"email" example:"ada@example.com" validate:"required"`
	Password string `json:"password" example:"secret1" validate:"required"`
}

// Validate implements validation.Validatable.
func (r *SignInRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// UserDTO is the public view of an account.
type UserDTO struct {
	ID    string `json:"id"`
	Email string `json:"email" example:"ada@example.com"`
	Name  string `json:"name" example:"Ada"`
}

// SessionResponse is returned by sign up, sign in and GET /auth/session.
type SessionResponse struct {
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserDTO   `json:"user"`
}

func newSessionResponse(s *models.Session, withToken bool) SessionResponse {
	resp := SessionResponse{
		ExpiresAt: s.ExpiresAt,
		User:      UserDTO{ID: s.UserID, Email: s.Email, Name: s.Name},
	}
	if withToken {
		resp.Token = s.Token
	}
	return resp
}

// HistoryResponse lists history records newest first.
type HistoryResponse struct {
	Items []models.HistoryRecord `json:"items" validate:"required"`
}

// CalculatorRequest is the request body for POST /calculator. Either Keys is
// set, or Op with its operands.
type CalculatorRequest struct {
	Op    string   `json:"op,omitempty" example:"+"`
	X     float64  `json:"x,omitempty"`
	Y     float64  `json:"y,omitempty"`
	Angle string   `json:"angle,omitempty" example:"deg"`
	Keys  []string `json:"keys,omitempty"`
}

// Validate implements validation.Validatable.
func (r *CalculatorRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Op, validation.When(len(r.Keys) == 0, validation.Required)),
		validation.Field(&r.Angle, validation.In("", "deg", "rad", "degrees", "radians")),
	)
}

// CalculatorResponse carries the display text and, when finite, the value.
type CalculatorResponse struct {
	Display string   `json:"display" example:"42"`
	Result  *float64 `json:"result,omitempty"`
}

func newCalculatorResponse(v float64) CalculatorResponse {
	resp := CalculatorResponse{Display: engine.FormatNumber(v)}
	if !math.IsNaN(v) && !math.IsInf(v, 0) {
		resp.Result = &v
	}
	return resp
}
