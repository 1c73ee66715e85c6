package intent

import (
	"context"

	"github.com/dd0wney/infragraph/pkg/logging"
	"github.com/dd0wney/infragraph/pkg/query"
)

// Responder answers natural-language questions: classify, execute,
// render. When the primary classifier fails (endpoint down, quota), the
// keyword fallback answers instead of surfacing the error to the user.
type Responder struct {
	classifier Classifier
	fallback   Classifier
	executor   *Executor
	logger     logging.Logger
}

// NewResponder builds a responder. classifier may be nil, in which case
// only the keyword rules are used.
func NewResponder(classifier Classifier, engine *query.Engine, logger logging.Logger) *Responder {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Responder{
		classifier: classifier,
		fallback:   NewKeywordClassifier(),
		executor:   NewExecutor(engine),
		logger:     logger.With(logging.Component("chat")),
	}
}

// Answer classifies the question and runs the resulting operation.
func (r *Responder) Answer(ctx context.Context, question string, history []Turn) Reply {
	in := r.classify(ctx, question, history)
	reply := r.executor.Execute(in)

	r.logger.Debug("question answered",
		logging.Operation(string(reply.Op)),
		logging.Reason(string(reply.Reason)),
	)
	return reply
}

func (r *Responder) classify(ctx context.Context, question string, history []Turn) Intent {
	if r.classifier != nil {
		in, err := r.classifier.Classify(ctx, question, history)
		if err == nil && in.Op != OpUnknown {
			return in
		}
		if err != nil {
			r.logger.Warn("classifier failed, using keyword rules", logging.Error(err))
		}
	}
	in, _ := r.fallback.Classify(ctx, question, history)
	return in
}
