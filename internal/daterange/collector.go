package daterange

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Operator-facing prompts and messages
const (
	PromptIntro     = "Digite o período desejado para análise de custos:"
	PromptStart     = "Data de início (AAAA-MM-DD): "
	PromptEnd       = "Data de término (AAAA-MM-DD): "
	MsgInvalidDate  = "Formato de data inválido. Use o formato AAAA-MM-DD."
	MsgInvalidOrder = "Erro: A data de início deve ser anterior à data de término."
)

var (
	// ErrAborted is returned when the operator interrupts input (EOF or Ctrl+C)
	ErrAborted = errors.New("date input aborted")

	// ErrTooManyAttempts is returned when MaxAttempts invalid pairs were entered
	ErrTooManyAttempts = errors.New("too many invalid date ranges")
)

type state int

const (
	awaitingStart state = iota
	awaitingEnd
	validating
	done
)

type line struct {
	text string
	err  error
}

// Collector prompts for a start and end date until a valid range is entered.
// A Collector serves a single Collect call; input read afterwards is dropped.
type Collector struct {
	out   io.Writer
	lines chan line
	done  chan struct{}
	stop  sync.Once

	// MaxAttempts bounds the number of pairs read; 0 means retry forever
	MaxAttempts int
}

// NewCollector creates a Collector reading answers from in and writing
// prompts and validation messages to out.
func NewCollector(in io.Reader, out io.Writer) *Collector {
	c := &Collector{
		out:   out,
		lines: make(chan line),
		done:  make(chan struct{}),
	}
	go c.scan(in)
	return c
}

// scan feeds input lines to the collector; a blocked read must not hold
// up cancellation, so it runs on its own goroutine. It exits once Collect
// has returned and the pending read completes.
func (c *Collector) scan(in io.Reader) {
	defer close(c.lines)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if !c.send(line{text: scanner.Text()}) {
			return
		}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	c.send(line{err: err})
}

func (c *Collector) send(l line) bool {
	select {
	case c.lines <- l:
		return true
	case <-c.done:
		return false
	}
}

// Collect runs the prompt loop. Invalid input is reported and the operator
// is asked again for both dates. It returns ErrAborted when input ends or
// ctx is cancelled.
func (c *Collector) Collect(ctx context.Context) (DateRange, error) {
	defer c.stop.Do(func() { close(c.done) })

	fmt.Fprintln(c.out, PromptIntro)

	var (
		startStr, endStr string
		attempts         int
		result           DateRange
	)

	for st := awaitingStart; st != done; {
		switch st {
		case awaitingStart:
			if c.MaxAttempts > 0 && attempts >= c.MaxAttempts {
				return DateRange{}, fmt.Errorf("%w: %d attempts", ErrTooManyAttempts, attempts)
			}
			attempts++

			s, err := c.ask(ctx, PromptStart)
			if err != nil {
				return DateRange{}, err
			}
			startStr = s
			st = awaitingEnd

		case awaitingEnd:
			s, err := c.ask(ctx, PromptEnd)
			if err != nil {
				return DateRange{}, err
			}
			endStr = s
			st = validating

		case validating:
			r, err := Parse(startStr, endStr)
			switch {
			case err == nil:
				result = r
				st = done
			case errors.Is(err, ErrInvalidOrder):
				fmt.Fprintln(c.out, MsgInvalidOrder)
				st = awaitingStart
			default:
				fmt.Fprintln(c.out, MsgInvalidDate)
				st = awaitingStart
			}
		}
	}

	return result, nil
}

func (c *Collector) ask(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return "", fmt.Errorf("%w: %v", ErrAborted, ctx.Err())
	case l, ok := <-c.lines:
		if !ok || l.err != nil {
			fmt.Fprintln(c.out)
			if !ok || errors.Is(l.err, io.EOF) {
				return "", ErrAborted
			}
			return "", fmt.Errorf("%w: %v", ErrAborted, l.err)
		}
		return l.text, nil
	}
}
