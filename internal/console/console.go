// Package console is a line-oriented terminal host for the booking workflow.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"medical-booking/internal/appointments"
	"medical-booking/internal/model"
	"medical-booking/internal/workflow"
)

const help = `comandos:
  data <DD/MM/AAAA>     informa a data
  hora <HH:MM|n>        escolhe um horário (pelo valor ou número da lista)
  medico <id|n>         escolhe um médico (pelo id ou número da lista)
  proximo | voltar      avança ou volta um passo
  ir <date|time|doctor|confirm>
  agendar               confirma a consulta
  cancelar              sai sem agendar`

// Outcome is how a console session ended.
type Outcome struct {
	Booked      bool
	Appointment model.Appointment
}

type Console struct {
	wf  *workflow.Workflow
	in  io.Reader
	out io.Writer
}

func New(wf *workflow.Workflow, in io.Reader, out io.Writer) *Console {
	return &Console{wf: wf, in: in, out: out}
}

// Run reads commands until the appointment is booked, the user cancels or
// input ends. The workflow is always torn down on return.
func (c *Console) Run(ctx context.Context) (Outcome, error) {
	defer c.wf.Cancel()

	sc := bufio.NewScanner(c.in)
	c.render()
	for {
		fmt.Fprint(c.out, "> ")
		if !sc.Scan() {
			return Outcome{}, sc.Err()
		}
		out, done, err := c.exec(ctx, sc.Text())
		if err != nil && !shownInView(err) {
			fmt.Fprintf(c.out, "erro: %v\n", err)
		}
		if done {
			return out, nil
		}
		c.render()
	}
}

func (c *Console) exec(ctx context.Context, line string) (Outcome, bool, error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(cmd) {
	case "":
		return Outcome{}, false, nil
	case "data", "date":
		return Outcome{}, false, c.wf.SetDate(arg)
	case "hora", "time":
		return Outcome{}, false, c.wf.SelectTime(c.pick(arg, c.wf.View().Slots))
	case "medico", "doctor":
		return Outcome{}, false, c.wf.SelectDoctor(c.pickDoctor(arg))
	case "proximo", "next":
		return Outcome{}, false, c.wf.Advance()
	case "voltar", "back":
		return Outcome{}, false, c.wf.Retreat()
	case "ir", "goto":
		s, err := workflow.ParseStep(arg)
		if err != nil {
			return Outcome{}, false, err
		}
		return Outcome{}, false, c.wf.JumpTo(s)
	case "agendar", "submit":
		a, err := c.wf.Submit(ctx)
		if err != nil {
			return Outcome{}, false, err
		}
		fmt.Fprintln(c.out, workflow.MsgBooked)
		return Outcome{Booked: true, Appointment: a}, true, nil
	case "cancelar", "cancel":
		return Outcome{}, true, nil
	case "ajuda", "help":
		fmt.Fprintln(c.out, help)
		return Outcome{}, false, nil
	}
	return Outcome{}, false, fmt.Errorf("comando desconhecido %q (digite ajuda)", cmd)
}

// shownInView reports errors the workflow already turned into its message.
func shownInView(err error) bool {
	var verr *workflow.ValidationError
	var perr *appointments.PersistenceError
	return errors.As(err, &verr) || errors.As(err, &perr)
}

// pick resolves a 1-based list index, or returns the argument unchanged.
func (c *Console) pick(arg string, options []string) string {
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(options) {
		return options[n-1]
	}
	return arg
}

func (c *Console) pickDoctor(arg string) string {
	doctors := c.wf.View().Doctors
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(doctors) {
		return doctors[n-1].ID
	}
	return arg
}

func (c *Console) render() {
	v := c.wf.View()
	w := c.out

	fmt.Fprintf(w, "\n== %s ==\n%s\n", v.Title, v.Subtitle)
	var tabs []string
	for _, s := range workflow.Steps {
		if s == v.Step {
			tabs = append(tabs, "["+s.Label()+"]")
		} else {
			tabs = append(tabs, " "+s.Label()+" ")
		}
	}
	fmt.Fprintln(w, strings.Join(tabs, " "))

	switch v.Step {
	case workflow.StepDate:
		fmt.Fprintf(w, "Data (DD/MM/AAAA): %s\n", v.Date)
	case workflow.StepTime:
		for i, slot := range v.Slots {
			mark := " "
			if slot == v.Time {
				mark = "*"
			}
			fmt.Fprintf(w, "%s %2d) %s\n", mark, i+1, slot)
		}
	case workflow.StepDoctor:
		if v.LoadingDoctors {
			fmt.Fprintln(w, "Carregando médicos...")
			break
		}
		for i, d := range v.Doctors {
			mark := " "
			if v.Doctor != nil && v.Doctor.ID == d.ID {
				mark = "*"
			}
			fmt.Fprintf(w, "%s %2d) %s - %s\n", mark, i+1, d.Name, d.Specialty)
		}
	case workflow.StepConfirm:
		name, specialty := "", ""
		if v.Doctor != nil {
			name, specialty = v.Doctor.Name, v.Doctor.Specialty
		}
		fmt.Fprintln(w, "Resumo da Consulta")
		fmt.Fprintf(w, "  Data:          %s\n", v.Date)
		fmt.Fprintf(w, "  Horário:       %s\n", v.Time)
		fmt.Fprintf(w, "  Médico:        %s\n", name)
		fmt.Fprintf(w, "  Especialidade: %s\n", specialty)
	}

	if v.Notice != "" {
		fmt.Fprintf(w, "~ %s\n", v.Notice)
	}
	if v.Message != "" {
		fmt.Fprintf(w, "! %s\n", v.Message)
	}
}
