// ABOUTME: Patient-facing messages for workflow outcomes
// ABOUTME: Maps typed errors to the Portuguese text shown in the TUI and CLI

package notice

import (
	"context"
	"errors"

	"github.com/markalston/iris/internal/auth"
	"github.com/markalston/iris/internal/clinic"
	"github.com/markalston/iris/internal/provider"
	"github.com/markalston/iris/internal/session"
)

// Success messages
const (
	LoginOK       = "Login realizado com sucesso!"
	RegisterOK    = "Conta criada com sucesso!"
	LogoutOK      = "Você saiu da sua conta."
	ResetSent     = "Enviamos um e-mail para você redefinir sua senha."
	ScheduleOK    = "Consulta agendada com sucesso! Aguarde a confirmação."
	ProfileSaved  = "Perfil atualizado."
	RestartNeeded = "Reinicie o aplicativo para continuar."
)

// DemoHint is shown under the login form when the mock provider is active
const DemoHint = "Dica: Use teste@iris.com / 123456"

// Kind tells the renderer how to color a notice
type Kind int

const (
	Info Kind = iota
	Success
	Error
)

// Notice is one line of feedback
type Notice struct {
	Kind Kind
	Text string
}

// OK builds a success notice
func OK(text string) Notice {
	return Notice{Kind: Success, Text: text}
}

// FromError builds an error notice for err
func FromError(err error) Notice {
	return Notice{Kind: Error, Text: Text(err)}
}

// Text returns the patient-facing message for err
func Text(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, auth.ErrMissingFields):
		return "Por favor, preencha todos os campos."
	case errors.Is(err, auth.ErrPasswordMismatch):
		return "As senhas não coincidem!"
	case errors.Is(err, clinic.ErrMissingFields):
		return "Por favor, preencha todos os campos obrigatórios."
	case errors.Is(err, clinic.ErrPastDate):
		return "Escolha uma data a partir de hoje."
	case errors.Is(err, clinic.ErrInvalidSlot):
		return "Horário indisponível."
	case errors.Is(err, clinic.ErrInvalidType):
		return "Tipo de consulta inválido."
	case errors.Is(err, provider.ErrInvalidCredentials):
		return "Email ou senha incorretos."
	case errors.Is(err, session.ErrStorageUnavailable):
		return "Não foi possível salvar a sessão neste dispositivo."
	case errors.Is(err, provider.ErrNotAuthenticated):
		return "Sessão expirada. Faça login novamente."
	case errors.Is(err, provider.ErrNotFound):
		return "Registro não encontrado."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "A operação foi interrompida. Tente novamente."
	}

	var reqErr *provider.RequestError
	if errors.As(err, &reqErr) && reqErr.Status > 0 && reqErr.Message != "" {
		return reqErr.Message
	}
	if errors.Is(err, provider.ErrRequestFailed) {
		return "Não foi possível conectar ao servidor. Tente novamente."
	}
	return "Ocorreu um problema. Tente novamente."
}
