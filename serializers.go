package main

import (
	"errors"
	"strings"
	"time"

	"fintrack/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func init() {
	// amounts go over the wire as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Request payloads. None of them carries an owner field; handlers always take
// the owner from the authenticated caller.

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type recordRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

// validate applies the rules binding tags cannot express: a positive amount
// and a well-formed date. Returns a field error map on failure.
func (r *recordRequest) validate() (time.Time, map[string]string) {
	errs := map[string]string{}
	if r.Amount.Sign() <= 0 {
		errs["amount"] = "must be a positive number"
	}
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		if t, err2 := time.Parse(time.RFC3339, r.Date); err2 == nil {
			date = t
		} else {
			errs["date"] = "must be a valid date (YYYY-MM-DD)"
		}
	}
	if len(errs) > 0 {
		return time.Time{}, errs
	}
	return date, nil
}

type chatQueryRequest struct {
	Query string `json:"query"`
}

// fieldErrors converts a binding failure into a field -> message map so
// validation responses always carry field-level detail.
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[strings.ToLower(fe.Field())] = validationMessage(fe)
		}
		return out
	}
	out["non_field_errors"] = "invalid request body"
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

// Response shapes.

type userResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

func serializeUser(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

type recordResponse struct {
	ID          uint            `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
}

func serializeExpense(e models.Expense) recordResponse {
	return recordResponse{ID: e.ID, Amount: e.Amount, Date: e.Date.Format("2006-01-02"), Category: e.Category, Description: e.Description}
}

func serializeIncome(i models.Income) recordResponse {
	return recordResponse{ID: i.ID, Amount: i.Amount, Date: i.Date.Format("2006-01-02"), Category: i.Category, Description: i.Description}
}

func serializeExpenses(items []models.Expense) []recordResponse {
	out := make([]recordResponse, 0, len(items))
	for _, e := range items {
		out = append(out, serializeExpense(e))
	}
	return out
}

func serializeIncomes(items []models.Income) []recordResponse {
	out := make([]recordResponse, 0, len(items))
	for _, i := range items {
		out = append(out, serializeIncome(i))
	}
	return out
}
