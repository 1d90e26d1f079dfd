// Package classifier obtains a structured intent classification for an
// email from the Gemini API.
package classifier

import (
	"context"

	"github.com/nakshatra-7/Email-Agent/pkg/models"
)

// Input is the classifier view of one email
type Input struct {
	Subject string
	Sender  string
	Body    string
}

// Classifier produces a Classification for an email. Implementations must
// return a fully defaulted Classification or an error, never a partial one.
type Classifier interface {
	Classify(ctx context.Context, in Input) (models.Classification, error)
}
