// internal/tasks/conversation/dispatch-request/map.go
package dispatchrequest

import (
	"strings"

	"db-agent/internal/models"
	"db-agent/pkg/intent"
)

// mapDocument converts a validated intent document into the tagged action.
// This is the single place where the model's structured output becomes an
// executable decision; nothing downstream looks at the document again.
//
// A document carrying both a media payload and SQL resolves to the media
// variant. A variant missing its required payload maps to Unrecognized —
// never a guessed default.
func (h *Handler) mapDocument(doc *intent.Document) models.Action {
	switch doc.Action {
	case "audio":
		return h.mapMedia(doc, models.ActionAudioTask)

	case "image":
		return h.mapMedia(doc, models.ActionImageTask)

	case "sql":
		// SQL produced alongside a media payload is incidental; the
		// payload wins.
		if hasMediaPayload(doc) {
			return h.mapMedia(doc, h.inferMediaKind(doc.Media))
		}
		sql := strings.TrimSpace(doc.SQL)
		if sql == "" {
			return unrecognized("the request was classified as SQL but no statement was produced")
		}
		return models.Action{
			Kind:  models.ActionQuery,
			Query: &models.QueryAction{SQL: sql},
		}

	case "table_op":
		verb := models.TableVerb(strings.ToLower(doc.Verb))
		switch verb {
		case models.VerbInsert, models.VerbSelect, models.VerbUpdate, models.VerbDelete:
		default:
			return unrecognized("the request was classified as a table operation with no recognizable verb")
		}
		if doc.Table == "" {
			return unrecognized("the request was classified as a table operation but no table was named")
		}
		return models.Action{
			Kind: models.ActionTableOp,
			TableOp: &models.TableOpAction{
				Verb:   verb,
				Table:  doc.Table,
				Filter: mapFilter(doc.Filter),
				Fields: doc.Fields,
			},
		}

	case "unknown":
		reason := doc.Reason
		if reason == "" {
			reason = "the request did not match any supported action"
		}
		return unrecognized(reason)

	default:
		return unrecognized("the request did not match any supported action")
	}
}

func (h *Handler) mapMedia(doc *intent.Document, kind models.ActionKind) models.Action {
	payload := doc.Media
	if payload == nil {
		payload = &intent.MediaPayload{}
	}

	media := &models.MediaAction{
		Locator:       payload.Locator,
		Table:         payload.Table,
		LocatorColumn: payload.LocatorColumn,
		TargetColumn:  payload.TargetColumn,
		Filter:        mapFilter(payload.Filter),
	}

	if media.Table == "" {
		media.Table = h.config.MediaTable
	}
	if kind == models.ActionAudioTask {
		if media.LocatorColumn == "" {
			media.LocatorColumn = h.config.AudioLocatorColumn
		}
		if media.TargetColumn == "" {
			media.TargetColumn = h.config.AudioTargetColumn
		}
	} else {
		if media.LocatorColumn == "" {
			media.LocatorColumn = h.config.ImageLocatorColumn
		}
		if media.TargetColumn == "" {
			media.TargetColumn = h.config.ImageTargetColumn
		}
	}

	return models.Action{Kind: kind, Media: media}
}

func hasMediaPayload(doc *intent.Document) bool {
	m := doc.Media
	if m == nil {
		return false
	}
	return m.Locator != "" || m.LocatorColumn != "" || m.TargetColumn != "" || m.Table != "" || len(m.Filter) > 0
}

// inferMediaKind resolves audio versus image for a payload that arrived
// without a media action tag, using the configured column names and the
// locator's extension.
func (h *Handler) inferMediaKind(payload *intent.MediaPayload) models.ActionKind {
	if payload.LocatorColumn == h.config.ImageLocatorColumn && payload.LocatorColumn != "" {
		return models.ActionImageTask
	}
	if payload.TargetColumn == h.config.ImageTargetColumn && payload.TargetColumn != "" {
		return models.ActionImageTask
	}
	lower := strings.ToLower(payload.Locator)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".webp"} {
		if strings.HasSuffix(lower, ext) {
			return models.ActionImageTask
		}
	}
	return models.ActionAudioTask
}

func mapFilter(conditions []intent.Condition) models.Filter {
	if len(conditions) == 0 {
		return nil
	}
	filter := make(models.Filter, len(conditions))
	for i, c := range conditions {
		filter[i] = models.Condition{Column: c.Column, Op: c.Op, Value: c.Value}
	}
	return filter
}

func unrecognized(reason string) models.Action {
	return models.Action{Kind: models.ActionUnrecognized, Reason: reason}
}
