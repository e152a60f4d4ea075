// internal/tasks/media/read-receipt/handler.go
package readreceipt

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	apperrors "db-agent/internal/common/errors"
	fetchresource "db-agent/internal/tasks/media/fetch-resource"
)

const (
	TaskType = "read-receipt"
)

// amountPattern matches money-like numbers in the model's reply, with or
// without thousands separators: 42, 42.50, 1,234.56.
var amountPattern = regexp.MustCompile(`[0-9]{1,3}(?:,[0-9]{3})*(?:\.[0-9]{1,2})?|[0-9]+(?:\.[0-9]{1,2})?`)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Fetcher stages the image on local disk.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (*fetchresource.Resource, error)
}

// Gateway is the hosted-model surface the pipeline needs.
type Gateway interface {
	DescribeImage(ctx context.Context, imagePath, instruction string) (string, error)
}

type Handler struct {
	config  *Config
	fetcher Fetcher
	gateway Gateway
	logger  Logger
}

func NewHandler(config *Config, fetcher Fetcher, gateway Gateway, log Logger) *Handler {
	return &Handler{
		config:  config,
		fetcher: fetcher,
		gateway: gateway,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// execute stages the receipt image, asks the model for the total, and parses
// the first money-like number out of the reply.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	h.logger.Info("reading receipt", map[string]interface{}{
		"locator": input.Locator,
	})

	resource, err := h.fetcher.Fetch(ctx, input.Locator)
	if err != nil {
		return nil, err
	}
	defer resource.Release()

	text, err := h.gateway.DescribeImage(ctx, resource.Path, h.config.Instruction)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)

	amount, err := parseAmount(text)
	if err != nil {
		return nil, apperrors.NewExtractionError(err)
	}

	h.logger.Info("receipt total extracted", map[string]interface{}{
		"locator": input.Locator,
		"amount":  amount,
	})

	return &Output{Amount: amount, RawText: text}, nil
}

// parseAmount pulls the total out of free-form model text such as
// "The total amount is $1,234.56.".
func parseAmount(text string) (float64, error) {
	match := amountPattern.FindString(text)
	if match == "" {
		return 0, fmt.Errorf("no amount found in reply: %q", text)
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable amount %q: %w", match, err)
	}
	return value, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
