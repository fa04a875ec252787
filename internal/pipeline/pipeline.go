package pipeline

import (
	"time"

	"github.com/pkg/errors"

	"github.com/funvibe/gml/internal/contract"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Name() string
	Process(ctx *PipelineContext) *PipelineContext
}

// Pass is a processor that can also run on a single synthesized node, so
// late additions catch up with the passes already completed.
type Pass interface {
	Processor
	Visit(ctx *PipelineContext, n Node)
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Each processor completes over every unit
// before the next starts; the first failure stops the run and is stored in
// ctx.Err.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		if ctx.Err != nil {
			return ctx
		}
		start := time.Now()
		ctx.begin(processor)
		next, err := runProcessor(ctx, processor)
		if err != nil {
			ctx.Err = errors.Wrapf(err, "pass %s%s", processor.Name(), ctx.position())
			ctx.Logger.Error("pipeline.failure", "pass", processor.Name(), "error", ctx.Err.Error())
			return ctx
		}
		ctx = next
		ctx.finish(processor)
		ctx.Logger.Debug("pipeline.pass", "pass", processor.Name(), "units", len(ctx.Units), "elapsed", time.Since(start))
	}
	return ctx
}

func runProcessor(ctx *PipelineContext, processor Processor) (next *PipelineContext, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = contract.Recover(r)
		}
	}()
	return processor.Process(ctx), nil
}
