// internal/tasks/conversation/dispatch-request/handler.go
package dispatchrequest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "db-agent/internal/common/errors"
	"db-agent/internal/common/genai"
	"db-agent/internal/common/metrics"
	"db-agent/internal/models"
	describeschema "db-agent/internal/tasks/data-access/describe-schema"
	executesql "db-agent/internal/tasks/data-access/execute-sql"
	tableops "db-agent/internal/tasks/data-access/table-ops"
	readreceipt "db-agent/internal/tasks/media/read-receipt"
	summarizeaudio "db-agent/internal/tasks/media/summarize-audio"
	"db-agent/pkg/intent"
)

const (
	TaskType = "dispatch-request"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Gateway interprets the user's request into a structured intent document.
type Gateway interface {
	Interpret(ctx context.Context, prompt string, kind genai.CallKind) (string, error)
}

// SchemaProvider fetches the live schema prompt block, once per turn.
type SchemaProvider interface {
	Execute(ctx context.Context) (*describeschema.Output, error)
}

// SQLRunner executes raw SQL produced by the model.
type SQLRunner interface {
	Execute(ctx context.Context, input *executesql.Input) (*executesql.Output, error)
}

// TableStore performs direct table operations.
type TableStore interface {
	Execute(ctx context.Context, input *tableops.Input) (*tableops.Output, error)
}

// AudioPipeline runs fetch→extract→transcribe→summarize for one locator.
type AudioPipeline interface {
	Execute(ctx context.Context, input *summarizeaudio.Input) (*summarizeaudio.Output, error)
}

// ImagePipeline runs fetch→describe→parse for one locator.
type ImagePipeline interface {
	Execute(ctx context.Context, input *readreceipt.Input) (*readreceipt.Output, error)
}

type Handler struct {
	config  *Config
	gateway Gateway
	schema  SchemaProvider
	sql     SQLRunner
	tables  TableStore
	audio   AudioPipeline
	image   ImagePipeline
	logger  Logger
}

func NewHandler(config *Config, gateway Gateway, schema SchemaProvider, sql SQLRunner, tables TableStore, audio AudioPipeline, image ImagePipeline, log Logger) *Handler {
	return &Handler{
		config:  config,
		gateway: gateway,
		schema:  schema,
		sql:     sql,
		tables:  tables,
		audio:   audio,
		image:   image,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// execute runs one turn: interpret the request, map it to an action, route
// the action, render the reply.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	action, err := h.interpret(ctx, input.Text)
	if err != nil {
		return nil, err
	}

	h.logger.Info("request classified", map[string]interface{}{
		"kind": string(action.Kind),
	})

	output, err := h.route(ctx, action)
	if err != nil {
		metrics.AgentTurnFailures.WithLabelValues(string(action.Kind), errorCode(err)).Inc()
		return nil, err
	}

	metrics.AgentTurnsCompleted.WithLabelValues(string(action.Kind)).Inc()
	return output, nil
}

// interpret asks the model for an intent document and maps it to an action.
func (h *Handler) interpret(ctx context.Context, text string) (models.Action, error) {
	schema, err := h.schema.Execute(ctx)
	if err != nil {
		return models.Action{}, err
	}

	prompt := buildPrompt(schema.PromptBlock, text)

	reply, err := h.gateway.Interpret(ctx, prompt, genai.KindIntent)
	if err != nil {
		return models.Action{}, err
	}

	doc, err := intent.Parse(reply)
	if err != nil {
		// An unparseable reply is a clarification case, not a turn
		// failure.
		h.logger.Error("intent reply unparseable", map[string]interface{}{
			"error": err.Error(),
		})
		return unrecognized("the request could not be interpreted"), nil
	}

	return h.mapDocument(doc), nil
}

func buildPrompt(schemaBlock, text string) string {
	return fmt.Sprintf(
		"%s\n\nNow, based on the above schema, interpret this request: %s\n\n%s\nReturn only a JSON object without any explanation or markdown formatting.",
		schemaBlock, text, intent.ContractDescription,
	)
}

func (h *Handler) route(ctx context.Context, action models.Action) (*Output, error) {
	switch action.Kind {
	case models.ActionQuery:
		return h.runQuery(ctx, action.Query)
	case models.ActionTableOp:
		return h.runTableOp(ctx, action.TableOp)
	case models.ActionAudioTask:
		return h.runMedia(ctx, models.ActionAudioTask, action.Media)
	case models.ActionImageTask:
		return h.runMedia(ctx, models.ActionImageTask, action.Media)
	default:
		// No downstream call and no write for an unrecognized request.
		return &Output{
			Kind:    models.ActionUnrecognized,
			Message: fmt.Sprintf("I couldn't map that to a database action: %s. Please rephrase.", action.Reason),
		}, nil
	}
}

func (h *Handler) runQuery(ctx context.Context, query *models.QueryAction) (*Output, error) {
	result, err := h.sql.Execute(ctx, &executesql.Input{SQL: query.SQL})
	if err != nil {
		return nil, err
	}

	if result.IsRead {
		return &Output{
			Kind:     models.ActionQuery,
			Message:  renderRows(result.Rows),
			Rows:     result.Rows,
			RowCount: result.RowCount,
		}, nil
	}
	return &Output{
		Kind:       models.ActionQuery,
		Message:    fmt.Sprintf("Statement executed. %d row(s) affected.", result.RowsAffected),
		WriteCount: 1,
	}, nil
}

func (h *Handler) runTableOp(ctx context.Context, op *models.TableOpAction) (*Output, error) {
	result, err := h.tables.Execute(ctx, &tableops.Input{
		Verb:   op.Verb,
		Table:  op.Table,
		Filter: op.Filter,
		Fields: op.Fields,
	})
	if err != nil {
		return nil, err
	}

	output := &Output{Kind: models.ActionTableOp}
	switch op.Verb {
	case models.VerbSelect:
		output.Message = renderRows(result.Rows)
		output.Rows = result.Rows
		output.RowCount = result.RowCount
	case models.VerbInsert:
		output.Message = fmt.Sprintf("Inserted into %s: %s", op.Table, renderRow(result.InsertedRow))
		output.Rows = []map[string]interface{}{result.InsertedRow}
		output.RowCount = 1
		output.WriteCount = 1
	case models.VerbUpdate:
		output.Message = fmt.Sprintf("Updated %d row(s) in %s.", result.AffectedCount, op.Table)
		output.WriteCount = 1
	case models.VerbDelete:
		output.Message = fmt.Sprintf("Deleted %d row(s) from %s.", result.AffectedCount, op.Table)
		output.WriteCount = 1
	}
	return output, nil
}

// runMedia routes a media action: a locator means one direct pipeline run
// with no write; otherwise the rows selected by the filter are processed
// sequentially with one write per successful row.
func (h *Handler) runMedia(ctx context.Context, kind models.ActionKind, media *models.MediaAction) (*Output, error) {
	if !media.RowScoped() {
		value, err := h.deriveValue(ctx, kind, media.Locator)
		if err != nil {
			return nil, err
		}
		return &Output{Kind: kind, Message: value}, nil
	}
	return h.runRowScope(ctx, kind, media)
}

func (h *Handler) runRowScope(ctx context.Context, kind models.ActionKind, media *models.MediaAction) (*Output, error) {
	selected, err := h.tables.Execute(ctx, &tableops.Input{
		Verb:   models.VerbSelect,
		Table:  media.Table,
		Filter: media.Filter,
	})
	if err != nil {
		return nil, err
	}

	output := &Output{Kind: kind, RowCount: selected.RowCount}
	for _, row := range selected.Rows {
		outcome := h.processRow(ctx, kind, media, row)
		if outcome.Status == models.RowUpdated {
			output.WriteCount++
		}
		output.Outcomes = append(output.Outcomes, outcome)
	}

	output.Message = renderOutcomes(output.Outcomes, output.WriteCount)
	return output, nil
}

// processRow handles one row of a batch. Failures are recorded, never
// propagated: earlier writes stand and later rows still run.
func (h *Handler) processRow(ctx context.Context, kind models.ActionKind, media *models.MediaAction, row map[string]interface{}) models.RowOutcome {
	outcome := models.RowOutcome{RowID: row["id"]}

	// Without an id there is nothing to filter the write-back on.
	if outcome.RowID == nil {
		outcome.Status = models.RowSkipped
		outcome.Error = "row has no id to write back to"
		return outcome
	}

	locator, _ := row[media.LocatorColumn].(string)
	if strings.TrimSpace(locator) == "" {
		outcome.Status = models.RowSkipped
		outcome.Error = fmt.Sprintf("no value in %s", media.LocatorColumn)
		return outcome
	}

	value, err := h.deriveValue(ctx, kind, locator)
	if err != nil {
		outcome.Status = models.RowFailed
		outcome.Error = err.Error()
		return outcome
	}

	written, err := h.tables.Execute(ctx, &tableops.Input{
		Verb:   models.VerbUpdate,
		Table:  media.Table,
		Filter: models.Filter{{Column: "id", Op: "eq", Value: outcome.RowID}},
		Fields: map[string]interface{}{media.TargetColumn: value},
	})
	if err != nil {
		outcome.Status = models.RowFailed
		outcome.Error = err.Error()
		return outcome
	}
	if written.AffectedCount == 0 {
		outcome.Status = models.RowFailed
		outcome.Error = fmt.Sprintf("write-back matched no row with id %v", outcome.RowID)
		return outcome
	}

	outcome.Status = models.RowUpdated
	outcome.Value = value
	return outcome
}

// deriveValue runs the media pipeline for one locator and returns the value
// to reply with or write back.
func (h *Handler) deriveValue(ctx context.Context, kind models.ActionKind, locator string) (string, error) {
	if kind == models.ActionAudioTask {
		result, err := h.audio.Execute(ctx, &summarizeaudio.Input{Locator: locator})
		if err != nil {
			return "", err
		}
		return result.Summary, nil
	}

	result, err := h.image.Execute(ctx, &readreceipt.Input{Locator: locator})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%.2f", result.Amount), nil
}

// ==========================
// Reply rendering
// ==========================

func renderRows(rows []map[string]interface{}) string {
	if len(rows) == 0 {
		return "No rows found."
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", rows)
	}
	return string(data)
}

func renderRow(row map[string]interface{}) string {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Sprintf("%v", row)
	}
	return string(data)
}

func renderOutcomes(outcomes []models.RowOutcome, writeCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Processed %d row(s), updated %d.", len(outcomes), writeCount)
	for _, outcome := range outcomes {
		switch outcome.Status {
		case models.RowUpdated:
			fmt.Fprintf(&b, "\n- row %v: updated (%s)", outcome.RowID, outcome.Value)
		case models.RowSkipped:
			fmt.Fprintf(&b, "\n- row %v: skipped (%s)", outcome.RowID, outcome.Error)
		default:
			fmt.Fprintf(&b, "\n- row %v: failed (%s)", outcome.RowID, outcome.Error)
		}
	}
	return b.String()
}

func errorCode(err error) string {
	if stdErr := apperrors.AsStandardError(err); stdErr != nil {
		return string(stdErr.Code)
	}
	return string(apperrors.ErrCodeInternal)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
