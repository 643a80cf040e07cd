package nats

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the event log holding every record change.
	StreamName = "labwiz_records"
	// DraftBucket is the key-value bucket holding unsubmitted drafts.
	DraftBucket = "labwiz_drafts"

	subjectPrefix = "labwiz.records"
)

// SubjectForForm returns the subject record events of one form are
// published on. Example: "labwiz.records.patent".
func SubjectForForm(form string) string {
	return fmt.Sprintf("%s.%s", subjectPrefix, token(form))
}

// DraftKey returns the key a draft is stored under: "<form>.<recordID>",
// with "new" standing in for records that do not exist yet.
func DraftKey(form, recordID string) string {
	if recordID == "" {
		recordID = "new"
	}
	return token(form) + "." + token(recordID)
}

// token makes s safe to use as a single subject or key token.
func token(s string) string {
	return strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_").Replace(s)
}

// SetupStream creates or updates the record event stream. Records are kept
// until explicitly purged.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Description: "labwiz record create and update events",
		Subjects:    []string{subjectPrefix + ".>"},
		Storage:     jetstream.FileStorage,
	})
}

// SetupDrafts creates or updates the draft bucket. Only the latest draft per
// key is kept.
func SetupDrafts(ctx context.Context, js jetstream.JetStream) (jetstream.KeyValue, error) {
	return js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      DraftBucket,
		Description: "labwiz wizard drafts",
		History:     1,
		Storage:     jetstream.FileStorage,
	})
}
