package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"examstats/internal/apperrors"
	"examstats/pkg/contracts/domain"
)

// scoreTolerance bounds the disagreement allowed between an externally
// supplied total and the total recomputed from the correctness vector
// before a score_mismatch warning is raised.
const scoreTolerance = 1e-9

// Reconciler turns raw per-class response tables and optional grade
// summary tables into the canonical student dataset.
type Reconciler struct {
	logger *slog.Logger
}

// NewReconciler creates a reconciler. A nil logger falls back to
// slog.Default().
func NewReconciler(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{logger: logger}
}

// Reconcile merges the response tables into one canonical dataset and,
// when grade tables are supplied, joins achievement levels in by name.
//
// The returned records are stable-sorted ascending by student
// identifier and de-duplicated: a duplicate identifier across tables is
// a merge conflict and aborts the whole reconciliation. Recoverable
// findings (coerced tokens, unmatched grade names, empty classes,
// total-score disagreements) are returned as warnings.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	items []domain.ItemDefinition,
	tables []domain.ResponseTable,
	gradeTables [][]domain.RawGradeRecord,
) ([]domain.CanonicalStudentRecord, []domain.Warning, error) {
	if len(items) == 0 {
		return nil, nil, apperrors.InvalidInput("no item definitions supplied")
	}
	if len(tables) == 0 {
		return nil, nil, apperrors.InvalidInput("no response tables supplied")
	}

	r.logger.InfoContext(ctx, "starting reconciliation",
		slog.Int("items", len(items)),
		slog.Int("response_tables", len(tables)),
		slog.Int("grade_tables", len(gradeTables)),
	)

	var warnings []domain.Warning
	records := make([]domain.CanonicalStudentRecord, 0, 64)
	seen := make(map[int]string) // student_id -> source table label

	for ti := range tables {
		table := &tables[ti]
		label := tableLabel(table, ti)

		if err := r.validateTable(table, label, len(items)); err != nil {
			return nil, nil, err
		}
		if len(table.Rows) == 0 {
			warnings = append(warnings, domain.Warning{
				Code:    domain.WarnEmptyClass,
				Message: fmt.Sprintf("response table for class %d has no student rows", table.Class),
				Table:   label,
			})
			continue
		}

		for _, row := range table.Rows {
			rec, rowWarnings, err := r.buildRecord(table, label, row, items, seen)
			if err != nil {
				return nil, nil, err
			}
			warnings = append(warnings, rowWarnings...)
			records = append(records, rec)
		}
	}

	if len(gradeTables) > 0 {
		warnings = append(warnings, r.joinGrades(ctx, records, gradeTables)...)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StudentID < records[j].StudentID
	})

	r.logger.InfoContext(ctx, "reconciliation completed",
		slog.Int("students", len(records)),
		slog.Int("warnings", len(warnings)),
	)

	return records, warnings, nil
}

// validateTable checks the structural constraints of one response table.
func (r *Reconciler) validateTable(table *domain.ResponseTable, label string, itemCount int) error {
	if table.Class < 1 {
		return apperrors.InvalidInput("table %s does not declare a class number", label)
	}
	switch table.Scheme {
	case domain.SchemeBinary, domain.SchemeCorrectMark:
	case "":
		table.Scheme = domain.SchemeBinary
	default:
		return apperrors.InvalidInput("table %s declares unknown mark scheme %q", label, table.Scheme)
	}
	for _, row := range table.Rows {
		if len(row.Flags) != itemCount {
			return apperrors.SchemaMismatch(label, len(row.Flags), itemCount)
		}
	}
	return nil
}

// buildRecord converts one raw row into a canonical record, coercing
// its flags and deriving the student identifier.
func (r *Reconciler) buildRecord(
	table *domain.ResponseTable,
	label string,
	row domain.RawResponseRecord,
	items []domain.ItemDefinition,
	seen map[int]string,
) (domain.CanonicalStudentRecord, []domain.Warning, error) {
	class := table.Class
	if row.Class > 0 {
		class = row.Class
	}
	if row.Roster < 1 {
		return domain.CanonicalStudentRecord{}, nil,
			apperrors.InvalidInput("table %s: student %q has no roster number", label, row.Name)
	}

	id := domain.StudentID(class, row.Roster)
	if prev, dup := seen[id]; dup {
		return domain.CanonicalStudentRecord{}, nil, apperrors.MergeConflict(id, prev, label)
	}
	seen[id] = label

	var warnings []domain.Warning
	correct := make([]int, len(items))
	responses := make([]string, len(items))
	for i, raw := range row.Flags {
		value, coerced := CoerceFlag(raw, table.Scheme)
		correct[i] = value
		responses[i] = strings.TrimSpace(raw)
		if coerced {
			warnings = append(warnings, domain.Warning{
				Code:      domain.WarnCoercedValue,
				Message:   fmt.Sprintf("item %d token %q coerced to %d", items[i].Number, raw, value),
				Table:     label,
				StudentID: id,
				Name:      row.Name,
				Item:      items[i].Number,
				Raw:       raw,
			})
		}
	}

	computed := 0.0
	for i, v := range correct {
		computed += float64(v) * items[i].Points
	}

	total := computed
	if row.Total != nil {
		// The export's own total column wins, but a disagreement is a
		// data-quality signal worth surfacing.
		total = *row.Total
		if math.Abs(*row.Total-computed) > scoreTolerance {
			warnings = append(warnings, domain.Warning{
				Code:      domain.WarnScoreMismatch,
				Message:   fmt.Sprintf("external total %.1f disagrees with recomputed %.1f", *row.Total, computed),
				Table:     label,
				StudentID: id,
				Name:      row.Name,
			})
		}
	}

	return domain.CanonicalStudentRecord{
		StudentID:  id,
		Name:       strings.TrimSpace(row.Name),
		Correct:    correct,
		Responses:  responses,
		TotalScore: total,
	}, warnings, nil
}

// joinGrades attaches achievement levels to the canonical records by
// trimmed-name match. Grade tables may omit class and roster numbers,
// so the name is the only reliable join key.
func (r *Reconciler) joinGrades(
	ctx context.Context,
	records []domain.CanonicalStudentRecord,
	gradeTables [][]domain.RawGradeRecord,
) []domain.Warning {
	var warnings []domain.Warning

	byName := make(map[string]*domain.RawGradeRecord)
	for ti, table := range gradeTables {
		for gi := range table {
			grade := &gradeTables[ti][gi]
			name := strings.TrimSpace(grade.Name)
			if name == "" {
				continue
			}
			if _, dup := byName[name]; dup {
				// First occurrence wins, matching the export order.
				warnings = append(warnings, domain.Warning{
					Code:    domain.WarnAmbiguousName,
					Message: fmt.Sprintf("grade tables list %q more than once; keeping the first row", name),
					Name:    name,
				})
				continue
			}
			byName[name] = grade
		}
	}

	matched := make(map[string]bool, len(byName))
	for i := range records {
		grade, ok := byName[records[i].Name]
		if !ok {
			continue
		}
		level := strings.TrimSpace(grade.Level)
		if level != "" {
			records[i].Level = &level
		}
		matched[records[i].Name] = true
	}

	var unmatched []string
	for name := range byName {
		if !matched[name] {
			unmatched = append(unmatched, name)
		}
	}
	sort.Strings(unmatched)
	for _, name := range unmatched {
		warnings = append(warnings, domain.Warning{
			Code:    domain.WarnUnmatchedName,
			Message: fmt.Sprintf("grade row for %q matches no response record", name),
			Name:    name,
		})
	}

	r.logger.DebugContext(ctx, "grade join completed",
		slog.Int("grade_rows", len(byName)),
		slog.Int("matched_names", len(matched)),
	)

	return warnings
}

// tableLabel names a table for error and warning context.
func tableLabel(table *domain.ResponseTable, index int) string {
	if table.Label != "" {
		return table.Label
	}
	return fmt.Sprintf("class-%d#%d", table.Class, index)
}
