package auth

// Feedback is the inline message shown next to the login form.
type Feedback struct {
	Message string
	Color   string
	Class   string
}

// FeedbackFor maps an outcome to its user-facing feedback. Each failure kind
// gets its own text and color.
func FeedbackFor(o Outcome) Feedback {
	switch o {
	case OutcomeSuccess:
		return Feedback{Message: "Login realizado com sucesso!", Color: "green", Class: "alert-success"}
	case OutcomeMissingFields:
		return Feedback{Message: "Preencha todos os campos.", Color: "red", Class: "alert-error"}
	case OutcomeUnknownUser:
		return Feedback{Message: "Usuário não encontrado. Verifique o nome de usuário.", Color: "#ff6b35", Class: "alert-warning"}
	case OutcomeWrongSecret:
		return Feedback{Message: "Senha incorreta. Tente novamente.", Color: "#dc3545", Class: "alert-error"}
	default:
		return Feedback{Message: "Erro ao realizar login. Tente novamente.", Color: "red", Class: "alert-error"}
	}
}
