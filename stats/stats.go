// Package stats collects per-identifier log-level histograms over a DLT
// message stream and periodically reports progress, mirroring the
// statistics pass a trace-indexing pipeline runs before presenting a file
// to a user.
package stats

import (
	"context"
	"errors"
	"io"

	"github.com/go-dlt/dltcore/dlt"
	"github.com/go-dlt/dltcore/frame"
	"github.com/go-dlt/dltcore/logx"
	"go.uber.org/zap"
)

// noneKey is the fallback bucket used when a message carries no
// application_id/context_id/ecu_id.
const noneKey = "NONE"

// progressEvery is how many frames elapse between progress notifications.
const progressEvery = 250_000

// LevelDistribution counts messages per DLT log severity, plus two
// catch-all buckets for non-Log messages and messages the collector
// couldn't classify.
type LevelDistribution struct {
	Fatal   int
	Error   int
	Warn    int
	Info    int
	Debug   int
	Verbose int
	NonLog  int
	Invalid int
}

func (d *LevelDistribution) observe(mt dlt.MessageType) {
	if mt.Category != dlt.CategoryLog {
		d.NonLog++

		return
	}
	switch mt.Log.Level {
	case dlt.LogLevelFatal:
		d.Fatal++
	case dlt.LogLevelError:
		d.Error++
	case dlt.LogLevelWarn:
		d.Warn++
	case dlt.LogLevelInfo:
		d.Info++
	case dlt.LogLevelDebug:
		d.Debug++
	case dlt.LogLevelVerbose:
		d.Verbose++
	default:
		d.Invalid++
	}
}

// IdMap maps an identifier (application_id/context_id/ecu_id, or noneKey)
// to its LevelDistribution.
type IdMap map[string]*LevelDistribution

func (m IdMap) bucket(key string) *LevelDistribution {
	if key == "" {
		key = noneKey
	}
	d, ok := m[key]
	if !ok {
		d = &LevelDistribution{}
		m[key] = d
	}

	return d
}

// Result is the outcome of a completed or cancelled Collect run.
type Result struct {
	ByApp     IdMap
	ByContext IdMap
	ByEcu     IdMap

	// ContainedNonVerbose reports whether any NonVerbose payload was
	// observed anywhere in the stream.
	ContainedNonVerbose bool

	// FrameCount is the total number of frames observed.
	FrameCount int64

	// Cancelled reports whether the run ended early via ctx.
	Cancelled bool
}

func newResult() *Result {
	return &Result{
		ByApp:     make(IdMap),
		ByContext: make(IdMap),
		ByEcu:     make(IdMap),
	}
}

// ProgressFunc is invoked every progressEvery frames, and once more at the
// end of a non-cancelled run.
type ProgressFunc func(framesSoFar int64)

// Collect drives s to completion, building per-identifier log-level
// histograms. It never aborts on a malformed frame: frame.Stream already
// absorbs recoverable codec errors internally, so Collect only needs to
// watch for io.EOF and context cancellation.
func Collect(ctx context.Context, s *frame.Stream, onProgress ProgressFunc) (*Result, error) {
	res := newResult()

	for {
		if err := ctx.Err(); err != nil {
			res.Cancelled = true

			return res, nil
		}

		msg, _, err := s.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if ctx.Err() != nil {
				res.Cancelled = true

				return res, nil
			}

			return res, err
		}

		observe(res, msg)
		res.FrameCount++

		if res.FrameCount%progressEvery == 0 {
			logx.L().Info("stats: collection progress", zap.Int64("frames", res.FrameCount))
			if onProgress != nil {
				onProgress(res.FrameCount)
			}
		}
	}

	logx.L().Info("stats: collection finished", zap.Int64("frames", res.FrameCount))
	if onProgress != nil {
		onProgress(res.FrameCount)
	}

	return res, nil
}

func observe(res *Result, msg dlt.Message) {
	if msg.Payload.Kind == dlt.PayloadNonVerbose {
		res.ContainedNonVerbose = true
	}

	var mt dlt.MessageType
	appID, ctxID := "", ""
	if msg.ExtendedHeader != nil {
		mt = msg.ExtendedHeader.MessageType
		appID = msg.ExtendedHeader.ApplicationID
		ctxID = msg.ExtendedHeader.ContextID
	} else {
		mt = dlt.MessageType{Category: dlt.CategoryUnknown}
	}

	ecuID := ""
	if msg.StandardHeader.EcuID != nil {
		ecuID = *msg.StandardHeader.EcuID
	} else if msg.StorageHeader != nil {
		ecuID = msg.StorageHeader.EcuID
	}

	res.ByApp.bucket(appID).observe(mt)
	res.ByContext.bucket(ctxID).observe(mt)
	res.ByEcu.bucket(ecuID).observe(mt)
}
