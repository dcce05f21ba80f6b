package workflow

import (
	"fmt"
	"strings"
)

// Step is one screen of the booking wizard.
type Step int

const (
	StepDate Step = iota
	StepTime
	StepDoctor
	StepConfirm
)

// Steps lists the wizard steps in order.
var Steps = []Step{StepDate, StepTime, StepDoctor, StepConfirm}

func (s Step) Valid() bool {
	return s >= StepDate && s <= StepConfirm
}

func (s Step) String() string {
	switch s {
	case StepDate:
		return "date"
	case StepTime:
		return "time"
	case StepDoctor:
		return "doctor"
	case StepConfirm:
		return "confirm"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

func ParseStep(raw string) (Step, error) {
	for _, s := range Steps {
		if strings.EqualFold(strings.TrimSpace(raw), s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStep, raw)
}

func (s Step) Title() string {
	switch s {
	case StepDate:
		return "Selecione a Data"
	case StepTime:
		return "Escolha o Horário"
	case StepDoctor:
		return "Selecione o Médico"
	case StepConfirm:
		return "Confirme os Dados"
	}
	return "Agendar Consulta"
}

func (s Step) Subtitle() string {
	switch s {
	case StepDate:
		return "Escolha a data para sua consulta"
	case StepTime:
		return "Selecione um horário disponível"
	case StepDoctor:
		return "Escolha o médico especialista"
	case StepConfirm:
		return "Revise os dados antes de confirmar"
	}
	return ""
}

// Label is the short tab caption.
func (s Step) Label() string {
	switch s {
	case StepDate:
		return "Data"
	case StepTime:
		return "Horário"
	case StepDoctor:
		return "Médico"
	case StepConfirm:
		return "Confirmar"
	}
	return s.String()
}

type transition struct {
	next    Step
	guard   func(f *fields) bool
	message string
}

// forward holds the guarded transitions; StepConfirm has none because
// confirming is Submit.
var forward = map[Step]transition{
	StepDate:   {next: StepTime, guard: (*fields).hasDate, message: MsgSelectDate},
	StepTime:   {next: StepDoctor, guard: (*fields).hasTime, message: MsgSelectTime},
	StepDoctor: {next: StepConfirm, guard: (*fields).hasDoctor, message: MsgSelectDoctor},
}

var backward = map[Step]Step{
	StepTime:    StepDate,
	StepDoctor:  StepTime,
	StepConfirm: StepDoctor,
}
