package api

import (
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/harrylevesque/schoolportal/internal/files"
	"github.com/harrylevesque/schoolportal/internal/models"
	"github.com/harrylevesque/schoolportal/internal/users"
)

type loginRequest struct {
	Usuario string `json:"usuario"`
	Senha   string `json:"senha"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	// an unreadable body is reported as missing fields
	_ = decodeJSON(r, &req)

	res, err := h.validator.Validate(req.Usuario, req.Senha)
	if err != nil {
		h.logger.Error("login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, Envelope{Message: "Erro interno do servidor"})
		return
	}
	if !res.OK() {
		h.logger.Info("login rejected", "usuario", req.Usuario, "tipo_erro", string(res.Outcome))
		writeJSON(w, res.Outcome.Status(), Envelope{Message: res.Outcome.Message(), TipoErro: string(res.Outcome)})
		return
	}

	env := Envelope{Success: true, Message: res.Outcome.Message(), Usuario: res.User}
	if h.tokens != nil {
		tok, err := h.tokens.Issue(*res.User)
		if err != nil {
			h.logger.Error("issuing token", "error", err)
		} else {
			env.Token = tok
		}
	}
	h.logger.Info("login succeeded", "usuario", res.User.Username)
	writeJSON(w, http.StatusOK, env)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Sistema de autenticação ativo")
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.users.List())
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "Erro ao buscar usuário")
		return
	}
	writeData(w, u)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var in users.NewUser
	if err := decodeJSON(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Todos os campos são obrigatórios")
		return
	}
	u, err := h.users.Create(in)
	if err != nil {
		writeError(w, err, "Erro ao adicionar usuário")
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "Usuário adicionado com sucesso", Data: u})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	removed, err := h.users.Delete(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "Erro ao remover usuário")
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "Usuário removido com sucesso", Data: removed})
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NovaSenha string `json:"novaSenha"`
	}
	_ = decodeJSON(r, &body)
	if err := h.users.ChangePassword(mux.Vars(r)["id"], body.NovaSenha); err != nil {
		writeError(w, err, "Erro ao alterar senha")
		return
	}
	writeMessage(w, http.StatusOK, "Senha alterada com sucesso")
}

// contact appends a validated message to the contacts collection.
func (h *Handler) contact(w http.ResponseWriter, r *http.Request) {
	var in models.ContactMessage
	_ = decodeJSON(r, &in)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)

	if in.Name == "" || in.Email == "" || in.Message == "" {
		writeMessage(w, http.StatusBadRequest, "Todos os campos são obrigatórios")
		return
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		writeMessage(w, http.StatusBadRequest, "Email inválido")
		return
	}

	in.ID = uuid.NewString()
	in.CreatedAt = time.Now().UTC()

	h.contactMu.Lock()
	defer h.contactMu.Unlock()

	var inbox []models.ContactMessage
	if err := h.store.Read(files.Contacts, &inbox); err != nil {
		inbox = nil
	}
	if err := h.store.Write(files.Contacts, append(inbox, in)); err != nil {
		h.logger.Error("persisting contact message", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Erro ao enviar mensagem")
		return
	}
	h.logger.Info("contact message received", "id", in.ID, "email", in.Email)
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "Mensagem enviada com sucesso", Data: in})
}
