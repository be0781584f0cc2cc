// Package auth validates portal credentials and issues login tokens.
package auth

import (
	"fmt"
	"net/http"

	"github.com/harrylevesque/schoolportal/internal/models"
)

// Outcome is the result of a credential check. Non-success values are the
// "tipo_erro" strings of the login response.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeMissingFields Outcome = "campos_obrigatorios"
	OutcomeUnknownUser   Outcome = "usuario_inexistente"
	OutcomeWrongSecret   Outcome = "senha_incorreta"
)

// Message is the server-side message for the outcome.
func (o Outcome) Message() string {
	switch o {
	case OutcomeSuccess:
		return "Login realizado com sucesso"
	case OutcomeMissingFields:
		return "Usuário e senha são obrigatórios"
	case OutcomeUnknownUser:
		return "Usuário não encontrado"
	case OutcomeWrongSecret:
		return "Senha incorreta"
	default:
		return "Erro interno do servidor"
	}
}

// Status is the HTTP status the login route answers with.
func (o Outcome) Status() int {
	switch o {
	case OutcomeSuccess:
		return http.StatusOK
	case OutcomeMissingFields:
		return http.StatusBadRequest
	case OutcomeUnknownUser, OutcomeWrongSecret:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Result of Validate. User is set, without its secret, only on success.
type Result struct {
	Outcome Outcome
	User    *models.User
}

// OK reports a successful login.
func (r Result) OK() bool { return r.Outcome == OutcomeSuccess }

// UserSource supplies the records to scan.
type UserSource interface {
	AllUsers() ([]models.User, error)
}

// Validator checks an identifier/secret pair against a UserSource.
type Validator struct {
	Users   UserSource
	Matcher SecretMatcher
}

// Validate distinguishes a missing field, an unknown identifier and a wrong
// secret. Identifiers match exactly and case-sensitively.
func (v Validator) Validate(identifier, secret string) (Result, error) {
	if identifier == "" || secret == "" {
		return Result{Outcome: OutcomeMissingFields}, nil
	}

	users, err := v.Users.AllUsers()
	if err != nil {
		return Result{}, fmt.Errorf("loading users: %w", err)
	}

	for _, u := range users {
		if u.Username != identifier {
			continue
		}
		if !v.Matcher.Match(u.Secret, secret) {
			return Result{Outcome: OutcomeWrongSecret}, nil
		}
		clean := u.WithoutSecret()
		return Result{Outcome: OutcomeSuccess, User: &clean}, nil
	}
	return Result{Outcome: OutcomeUnknownUser}, nil
}
