package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/installkit/internal/environment"
	kiterrors "github.com/alexisbeaulieu97/installkit/pkg/errors"
)

// Run executes every stage in order. After the first failure only the
// always stages run; their handlers see a context that is never cancelled.
// The main transaction is prepared when TRANSACTION_BEGIN starts and
// committed once TRANSACTION_END finishes. Run returns the first failure.
func (c *Context) Run(ctx context.Context) error {
	plan, err := c.Plan()
	if err != nil {
		return err
	}

	defer func() {
		if !c.tx.Committed() {
			c.tx.Abort()
		}
	}()

	start := time.Now()
	var failure error
	fail := func(err error) {
		if failure == nil {
			failure = err
			c.recordFailure(err)
		}
	}

	for _, stage := range Stages() {
		if failure != nil && !stage.Always() {
			continue
		}

		c.mu.Lock()
		c.stage = stage
		c.mu.Unlock()

		stageCtx := ctx
		if stage.Always() {
			stageCtx = context.WithoutCancel(ctx)
		}

		c.Log.Debug("stage", "stage", stage.String())

		if stage == StageTransactionBegin {
			if err := c.tx.Prepare(); err != nil {
				fail(err)
				continue
			}
		}

		if err := c.runStage(stageCtx, stage, plan.Events(stage)); err != nil {
			fail(err)
			continue
		}

		if stage == StageTransactionEnd {
			if err := c.tx.Commit(); err != nil {
				fail(err)
			}
		}
	}

	c.Log.Debug("run finished", "duration", time.Since(start).String(), "failed", failure != nil)
	return failure
}

// runStage runs the ordered handlers of one stage. Regular stages stop at the
// first failure; always stages log it, keep going and return the first one.
func (c *Context) runStage(ctx context.Context, stage Stage, events []*Event) error {
	var first error
	for _, ev := range events {
		if !stage.Always() && ctx.Err() != nil {
			return kiterrors.NewAbortError(fmt.Sprintf("interrupted before %s", ev.Name))
		}

		log := c.Log.With("handler", ev.Name, "stage", stage.String())
		if ev.Condition != nil && !ev.Condition(c.Env) {
			c.setState(ev.Name, StateSkipped)
			log.Debug("condition false, skipping")
			continue
		}

		c.setState(ev.Name, StateRunning)
		log.Debug("method", "plugin", ev.plugin)

		if err := c.invoke(ctx, ev); err != nil {
			c.setState(ev.Name, StateFailed)
			wrapped := kiterrors.NewHandlerError(ev.Name, stage.String(), err)
			if !stage.Always() {
				return wrapped
			}
			log.Error(err, "handler failed")
			if first == nil {
				first = wrapped
			}
			continue
		}
		c.setState(ev.Name, StateDone)
	}
	return first
}

func (c *Context) invoke(ctx context.Context, ev *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return ev.Handler(ctx, c)
}

// recordFailure rolls back the transaction and publishes the failure in the
// environment so always-stage handlers can react to it.
func (c *Context) recordFailure(err error) {
	c.tx.Abort()
	c.Env.Set(environment.Error, true)

	var cfgErr *kiterrors.ConfigurationError
	switch {
	case kiterrors.IsAbort(err):
		c.Env.Set(environment.Aborted, true)
		c.Log.Warn("aborted by user", "error", err.Error())
		if notifyErr := c.Notify(NotifyAbort); notifyErr != nil {
			c.Log.Error(notifyErr, "abort notification failed")
		}
	case errors.As(err, &cfgErr):
		c.Log.Error(err, "configuration error")
	default:
		c.Log.Error(err, "failed to execute stage", "stage", c.Stage().String())
	}
}
