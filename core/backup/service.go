package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/abdel28fr/ecole-pwa/core"
)

var (
	// errors
	ErrMalformed  = errors.New("backup file is not valid JSON")
	ErrIncomplete = errors.New("backup file has no data or no version")
	ErrEmpty      = errors.New("backup file has no data to restore")
)

type (
	Repository interface {
		// Snapshot returns every collection; absent collections are empty.
		Snapshot(ctx context.Context) (Data, error)
		// Restore replaces the non-nil collections of data.
		Restore(ctx context.Context, data Data) error
	}

	Service struct {
		repo Repository
		now  func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Export returns a backup of the academy data. Staff accounts are not part of it.
func (svc *Service) Export(ctx context.Context) (Backup, error) {
	data, err := svc.repo.Snapshot(ctx)
	if err != nil {
		return Backup{}, err
	}
	return Backup{
		Version:   Version,
		Timestamp: svc.now().UTC(),
		Data:      data,
		Metadata:  newMetadata(data),
	}, nil
}

// envelope keeps the raw collections so that their presence and shape can be checked.
type envelope struct {
	Version   interface{}                `json:"version"`
	Timestamp interface{}                `json:"timestamp"`
	Data      map[string]json.RawMessage `json:"data"`
}

func parseEnvelope(raw []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, ErrMalformed
	}
	return env, nil
}

func isPresent(msg json.RawMessage) bool {
	return len(msg) > 0 && string(msg) != "null"
}

// kindOf returns "array", "object" or "" for other JSON values.
func kindOf(msg json.RawMessage) string {
	var v interface{}
	if err := json.Unmarshal(msg, &v); err != nil {
		return ""
	}
	switch v.(type) {
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	}
	return ""
}

// Validate checks a backup file without restoring it.
func (svc *Service) Validate(raw []byte) ValidationResult {
	res := ValidationResult{IsValid: true, Errors: []string{}, Warnings: []string{}, Info: map[string]interface{}{}}

	env, err := parseEnvelope(raw)
	if err != nil {
		res.addError(err.Error())
		return res
	}
	if env.Version == nil || env.Version == "" {
		res.addError("missing version")
	} else {
		res.Info["version"] = env.Version
	}
	if env.Timestamp == nil || env.Timestamp == "" {
		res.addError("missing timestamp")
	} else {
		res.Info["timestamp"] = env.Timestamp
	}
	if env.Data == nil {
		res.addError("missing data")
		return res
	}

	for _, name := range arrayCollections {
		msg, ok := env.Data[name]
		if !ok || !isPresent(msg) {
			res.addWarning(fmt.Sprintf("no %s data", name))
			continue
		}
		if kindOf(msg) != "array" {
			res.addError(fmt.Sprintf("invalid %s data", name))
			continue
		}
		var items []json.RawMessage
		_ = json.Unmarshal(msg, &items)
		res.Info[name+"Count"] = len(items)
		if name == Students && len(items) == 0 {
			res.addWarning("no students in backup")
		}
	}

	for _, name := range objectCollections {
		msg, ok := env.Data[name]
		if !ok || !isPresent(msg) {
			if name != StudentNotes {
				res.addWarning(fmt.Sprintf("no %s data", name))
			}
			continue
		}
		if kindOf(msg) != "object" {
			res.addError(fmt.Sprintf("invalid %s data", name))
			continue
		}
		switch name {
		case AppSettings:
			res.Info["hasSettings"] = true
		case UISettings:
			res.Info["hasUISettings"] = true
		case StudentNotes:
			res.Info["hasStudentNotes"] = true
		}
	}
	return res
}

// Restore replaces the collections present in a backup file and leaves the others untouched.
// It fails with a core.ValidationError when the file cannot be restored.
func (svc *Service) Restore(ctx context.Context, raw []byte) (Summary, error) {
	env, err := parseEnvelope(raw)
	if err != nil {
		return Summary{}, core.NewValidationError(err)
	}
	if env.Data == nil || env.Version == nil || env.Version == "" {
		return Summary{}, core.NewValidationError(ErrIncomplete)
	}

	var hasData bool
	for _, name := range arrayCollections {
		if msg, ok := env.Data[name]; ok && kindOf(msg) == "array" {
			var items []json.RawMessage
			_ = json.Unmarshal(msg, &items)
			if len(items) > 0 {
				hasData = true
				break
			}
		}
	}
	if !hasData {
		return Summary{}, core.NewValidationError(ErrEmpty)
	}

	var data Data
	for name, msg := range env.Data {
		if !isPresent(msg) {
			delete(env.Data, name)
		}
	}
	dataRaw, _ := json.Marshal(env.Data)
	if err = json.Unmarshal(dataRaw, &data); err != nil {
		return Summary{}, core.NewValidationError(pkgerrors.Wrap(err, "invalid backup data"))
	}

	if err = svc.repo.Restore(ctx, data); err != nil {
		return Summary{}, pkgerrors.Wrap(err, "restoring backup")
	}
	return newSummary(env, data), nil
}

func newSummary(env envelope, data Data) Summary {
	sum := Summary{
		Version:  fmt.Sprint(env.Version),
		Restored: []string{},
		Counts:   map[string]int{},
	}
	if env.Timestamp != nil {
		sum.Timestamp = fmt.Sprint(env.Timestamp)
	}
	count := func(name string, restored bool, n int) {
		if restored {
			sum.Restored = append(sum.Restored, name)
			sum.Counts[name] = n
		}
	}
	count(Students, data.Students != nil, len(data.Students))
	count(Classes, data.Classes != nil, len(data.Classes))
	count(Subjects, data.Subjects != nil, len(data.Subjects))
	count(Grades, data.Grades != nil, len(data.Grades))
	count(Payments, data.Payments != nil, len(data.Payments))
	count(FinanceCategories, data.FinanceCategories != nil, len(data.FinanceCategories))
	count(FinanceTransactions, data.FinanceTransactions != nil, len(data.FinanceTransactions))
	if data.Settings != nil {
		sum.Restored = append(sum.Restored, AppSettings)
	}
	if data.UISettings != nil {
		sum.Restored = append(sum.Restored, UISettings)
	}
	if data.StudentNotes != nil {
		sum.Restored = append(sum.Restored, StudentNotes)
	}
	return sum
}
