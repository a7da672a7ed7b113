// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scan

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/walteh/rxscan/pkg/scan"

// 📊 instruments records one span per scan plus scan and match counters
type instruments struct {
	tracer  trace.Tracer
	scans   metric.Int64Counter
	matches metric.Int64Counter
}

func newInstruments(tp trace.TracerProvider, mp metric.MeterProvider) instruments {
	meter := mp.Meter(instrumentationName)

	scans, err := meter.Int64Counter("rxscan.scans",
		metric.WithDescription("Scans run, by final state"),
		metric.WithUnit("{scan}"))
	if err != nil {
		scans = noop.Int64Counter{}
	}

	matches, err := meter.Int64Counter("rxscan.matches",
		metric.WithDescription("Matches emitted by scans"),
		metric.WithUnit("{match}"))
	if err != nil {
		matches = noop.Int64Counter{}
	}

	return instruments{
		tracer:  tp.Tracer(instrumentationName),
		scans:   scans,
		matches: matches,
	}
}

func (in instruments) start(ctx context.Context, engine string, req Request) (context.Context, trace.Span) {
	return in.tracer.Start(ctx, "rxscan.scan", trace.WithAttributes(
		attribute.String("rxscan.engine", engine),
		attribute.String("rxscan.flags", req.Flags.String()),
		attribute.Int("rxscan.text_length", len(req.Text)),
	))
}

func (in instruments) finish(ctx context.Context, span trace.Span, sum Summary, err error) {
	defer span.End()

	state := attribute.String("rxscan.state", sum.State.String())
	span.SetAttributes(state, attribute.Int("rxscan.match_count", sum.MatchCount))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	in.scans.Add(ctx, 1, metric.WithAttributes(state))
	if sum.MatchCount > 0 {
		in.matches.Add(ctx, int64(sum.MatchCount))
	}
}
