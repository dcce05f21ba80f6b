package workflow

import (
	"errors"
	"fmt"
)

// User facing messages.
const (
	MsgSelectDate    = "Por favor, selecione uma data"
	MsgSelectTime    = "Por favor, selecione um horário"
	MsgSelectDoctor  = "Por favor, selecione um médico"
	MsgMissingFields = "Por favor, preencha todos os campos"
	MsgBookingFailed = "Erro ao agendar consulta. Tente novamente."
	MsgBooked        = "Consulta agendada com sucesso!"
)

var (
	ErrClosed           = errors.New("workflow: closed")
	ErrSubmitInProgress = errors.New("workflow: submit already in progress")
	ErrUnknownDoctor    = errors.New("workflow: unknown doctor")
	ErrUnknownStep      = errors.New("workflow: unknown step")
	ErrUnknownSlot      = errors.New("workflow: unknown time slot")
	ErrNotOnConfirm     = errors.New("workflow: submit is only allowed on the confirm step")
)

// ValidationError is a failed guard. It never reaches storage or network.
type ValidationError struct {
	Step    Step
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("workflow: %s: %s", e.Step, e.Message)
}
