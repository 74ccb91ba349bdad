// Package textcmd implements the line-oriented command protocol: one
// command per input line, one text block per command on output.
package textcmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/app"
	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/domain/model"
	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/pkg/logger"
	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/pkg/metrics"
)

// Command names of the protocol.
const (
	cmdRegisterCustomer   = "register_customer"
	cmdRegisterFreelancer = "register_freelancer"
	cmdRequestJob         = "request_job"
	cmdEmployFreelancer   = "employ_freelancer"
	cmdCompleteAndRate    = "complete_and_rate"
	cmdCancelByFreelancer = "cancel_by_freelancer"
	cmdCancelByCustomer   = "cancel_by_customer"
	cmdBlacklist          = "blacklist"
	cmdUnblacklist        = "unblacklist"
	cmdChangeService      = "change_service"
	cmdSimulateMonth      = "simulate_month"
	cmdQueryFreelancer    = "query_freelancer"
	cmdQueryCustomer      = "query_customer"
	cmdUpdateSkill        = "update_skill"
)

// errBadNumber marks a numeric field that failed to parse; it surfaces as
// the generic per-line processing error, matching the protocol.
var errBadNumber = errors.New("malformed numeric field")

// maxLineBytes caps a single command line. Scanner's 64KiB default would
// abort the whole run on one oversized line.
const maxLineBytes = 1 << 20

// Dispatcher parses command lines, invokes the engine, and renders each
// result as the protocol's exact text block.
type Dispatcher struct {
	engine *app.Engine
	log    logger.Logger
}

// Option applies a configuration option to the Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(log logger.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// New creates a Dispatcher bound to an engine.
func New(engine *app.Engine, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		engine: engine,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run processes commands from r line by line, writing one result block per
// command to w. Blank lines are skipped. A fault on one line never aborts
// the remaining lines.
func (d *Dispatcher) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineBytes)
	out := bufio.NewWriter(w)
	defer out.Flush()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := out.WriteString(d.Handle(ctx, line) + "\n"); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	return nil
}

// Handle executes a single command line and returns its result block. Any
// panic while handling the line is contained and reported generically.
func (d *Dispatcher) Handle(ctx context.Context, line string) (result string) {
	start := time.Now()
	fields := strings.Fields(line)
	command := fields[0]

	defer func() {
		if r := recover(); r != nil {
			d.log.Error(ctx, "panic while handling command",
				logger.String("line", line),
				logger.String("panic", fmt.Sprint(r)))
			result = processingError(line)
		}
		metrics.IncrementCommandsProcessed(command)
		metrics.ObserveCommandDuration(command, time.Since(start).Seconds())
	}()

	out, err := d.dispatch(ctx, command, fields[1:])
	if err != nil {
		metrics.IncrementCommandErrors(command)
		if errors.Is(err, errBadNumber) {
			return processingError(line)
		}
		if errors.Is(err, app.ErrNoMatch) {
			return "no freelancers available"
		}
		return failureLine(command)
	}
	return out
}

// dispatch routes one parsed command to the engine.
func (d *Dispatcher) dispatch(ctx context.Context, command string, args []string) (string, error) {
	switch command {
	case cmdRegisterCustomer:
		if len(args) != 1 {
			return "", app.ErrInvalidID
		}
		if err := d.engine.RegisterCustomer(ctx, args[0]); err != nil {
			return "", err
		}
		return "registered customer " + args[0], nil

	case cmdRegisterFreelancer:
		if len(args) != 8 {
			return "", app.ErrInvalidID
		}
		price, err := atoi(args[2])
		if err != nil {
			return "", err
		}
		skills, err := parseSkills(args[3:8])
		if err != nil {
			return "", err
		}
		if err := d.engine.RegisterFreelancer(ctx, args[0], args[1], price, skills); err != nil {
			return "", err
		}
		return "registered freelancer " + args[0], nil

	case cmdRequestJob:
		if len(args) != 3 {
			return "", app.ErrInvalidLimit
		}
		k, err := atoi(args[2])
		if err != nil {
			return "", err
		}
		res, err := d.engine.RequestJob(ctx, args[0], args[1], k)
		if err != nil {
			return "", err
		}
		return formatMatch(res), nil

	case cmdEmployFreelancer:
		if len(args) != 2 {
			return "", app.ErrInvalidID
		}
		category, err := d.engine.Employ(ctx, args[0], args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s employed %s for %s", args[0], args[1], category), nil

	case cmdCompleteAndRate:
		if len(args) != 2 {
			return "", app.ErrInvalidRating
		}
		rating, err := atoi(args[1])
		if err != nil {
			return "", err
		}
		customerID, err := d.engine.CompleteAndRate(ctx, args[0], rating)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s completed job for %s with rating %d", args[0], customerID, rating), nil

	case cmdCancelByFreelancer:
		if len(args) != 1 {
			return "", app.ErrUnknownFreelancer
		}
		res, err := d.engine.CancelByFreelancer(ctx, args[0])
		if err != nil {
			return "", err
		}
		out := fmt.Sprintf("cancelled by freelancer: %s cancelled %s", args[0], res.CustomerID)
		if res.Banned {
			out += "\nplatform banned freelancer: " + args[0]
		}
		return out, nil

	case cmdCancelByCustomer:
		if len(args) != 2 {
			return "", app.ErrUnknownCustomer
		}
		if err := d.engine.CancelByCustomer(ctx, args[0], args[1]); err != nil {
			return "", err
		}
		return fmt.Sprintf("cancelled by customer: %s cancelled %s", args[0], args[1]), nil

	case cmdBlacklist:
		if len(args) != 2 {
			return "", app.ErrUnknownCustomer
		}
		if err := d.engine.Blacklist(ctx, args[0], args[1]); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s blacklisted %s", args[0], args[1]), nil

	case cmdUnblacklist:
		if len(args) != 2 {
			return "", app.ErrUnknownCustomer
		}
		if err := d.engine.Unblacklist(ctx, args[0], args[1]); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s unblacklisted %s", args[0], args[1]), nil

	case cmdChangeService:
		if len(args) != 3 {
			return "", app.ErrUnknownFreelancer
		}
		price, err := atoi(args[2])
		if err != nil {
			return "", err
		}
		old, err := d.engine.ChangeService(ctx, args[0], args[1], price)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("service change for %s queued from %s to %s", args[0], old, args[1]), nil

	case cmdSimulateMonth:
		d.engine.SimulateMonth(ctx)
		return "month complete", nil

	case cmdQueryFreelancer:
		if len(args) != 1 {
			return "", app.ErrUnknownFreelancer
		}
		f, err := d.engine.QueryFreelancer(ctx, args[0])
		if err != nil {
			return "", err
		}
		return formatFreelancer(f), nil

	case cmdQueryCustomer:
		if len(args) != 1 {
			return "", app.ErrUnknownCustomer
		}
		c, err := d.engine.QueryCustomer(ctx, args[0])
		if err != nil {
			return "", err
		}
		return formatCustomer(c), nil

	case cmdUpdateSkill:
		if len(args) != 6 {
			return "", app.ErrUnknownFreelancer
		}
		skills, err := parseSkills(args[1:6])
		if err != nil {
			return "", err
		}
		category, err := d.engine.UpdateSkill(ctx, args[0], skills)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("updated skills of %s for %s", args[0], category), nil

	default:
		return "Unknown command: " + command, nil
	}
}

// failureLine renders the uniform per-command failure text. The direct
// employment command reports under its engine operation name.
func failureLine(command string) string {
	if command == cmdEmployFreelancer {
		command = "employ"
	}
	return "Some error occurred in " + command + "."
}

// processingError is the catch-all for parse faults and panics.
func processingError(line string) string {
	return "Error processing command: " + line
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errBadNumber
	}
	return n, nil
}

// parseSkills reads the five whitespace-separated skill fields.
func parseSkills(args []string) (model.Skills, error) {
	var skills model.Skills
	for i, a := range args {
		v, err := atoi(a)
		if err != nil {
			return skills, err
		}
		skills[i] = v
	}
	return skills, nil
}

// formatMatch renders the ranked candidate listing plus the auto-employ
// line.
func formatMatch(res *app.MatchResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "available freelancers for %s (top %d):\n", res.Category, len(res.Candidates))

	for i, c := range res.Candidates {
		fmt.Fprintf(&sb, "%s - composite: %d, price: %d, rating: %s", c.ID, c.Composite, c.Price, ratingString(c.Rating))
		if i < len(res.Candidates)-1 {
			sb.WriteByte('\n')
		}
	}

	fmt.Fprintf(&sb, "\nauto-employed best freelancer: %s for customer %s", res.BestID, res.CustomerID)
	return sb.String()
}

func formatFreelancer(f model.Freelancer) string {
	return fmt.Sprintf("%s: %s, price: %d, rating: %s, completed: %d, cancelled: %d, skills: (%d,%d,%d,%d,%d), available: %s, burnout: %s",
		f.ID, f.Category, f.Price, ratingString(f.AverageRating), f.CompletedJobs, f.CancelledJobs,
		f.Skills[0], f.Skills[1], f.Skills[2], f.Skills[3], f.Skills[4],
		yesNo(f.Available), yesNo(f.Burnout))
}

func formatCustomer(c app.CustomerSummary) string {
	return fmt.Sprintf("%s: total spent: $%d, loyalty tier: %s, blacklisted freelancer count: %d, total employment count: %d",
		c.ID, c.TotalSpent, c.LoyaltyTier, c.BlacklistedCount, c.EmploymentCount)
}

// ratingString renders an average rating to one decimal place with halves
// rounding up, so an exact 4.25 prints as 4.3. Go's %.1f rounds ties to
// even and would print 4.2.
func ratingString(r float64) string {
	return strconv.FormatFloat(math.Floor(r*10+0.5)/10, 'f', 1, 64)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
