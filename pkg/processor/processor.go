// Package processor applies the per-zone hardening sequence: CAA records for
// every authorized certificate authority, then the selected zone settings.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nebari-dev/cfzones/pkg/cloudflare"
	"github.com/nebari-dev/cfzones/pkg/settings"
	"github.com/nebari-dev/cfzones/pkg/status"
)

const stepCAA = "caa"

// DefaultCAList is the set of certificate authorities authorized on every zone.
var DefaultCAList = []string{
	"amazon.com",
	"amazontrust.com",
	"awstrust.com",
	"amazonaws.com",
	"pki.goog; cansignhttpexchanges=yes",
	"letsencrypt.org",
	"ssl.com",
	"sectigo.com",
	"comodoca.com",
	"digicert.com",
	"geotrust.com",
	"symantec.com",
	"thawte.com",
	"globalsign.com",
}

// Config configures a Processor.
type Config struct {
	// CAList is the set of authorities to issue CAA records for. Nil uses DefaultCAList.
	CAList []string

	// Settings are applied in order after the CAA records.
	Settings []settings.Setting
}

// Processor applies the hardening sequence to one zone at a time. It is
// safe for concurrent use; all shared state lives in the client.
type Processor struct {
	client cloudflare.Client
	caList []string
	steps  []settings.Setting
}

// New creates a Processor. client is expected to already apply admission
// control and retry.
func New(client cloudflare.Client, cfg Config) *Processor {
	caList := cfg.CAList
	if caList == nil {
		caList = DefaultCAList
	}
	return &Processor{
		client: client,
		caList: caList,
		steps:  cfg.Settings,
	}
}

// ProcessZone issues one "issue" and one "issuewild" CAA record per
// authority, waits for all of them to settle, then applies each setting in
// order. Individual failures are logged and counted in the report and never
// stop the remaining work. An error is returned only when the sequence as a
// whole could not complete: the context was cancelled or a panic was recovered.
func (p *Processor) ProcessZone(ctx context.Context, zoneID, domain string) (report ZoneReport, err error) {
	tracer := otel.Tracer("cfzones")
	ctx, span := tracer.Start(ctx, "processor.ProcessZone")
	defer span.End()

	span.SetAttributes(
		attribute.String("zone.id", zoneID),
		attribute.String("zone.name", domain),
	)

	report = ZoneReport{Domain: domain, ZoneID: zoneID}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing zone %s: %v", domain, r)
			slog.Error("Zone processing panicked", "domain", domain, "panic", r, "stack", string(debug.Stack()))
		}
		if err != nil {
			span.RecordError(err)
			status.Send(ctx, status.NewUpdate(status.LevelError, err.Error()).WithZone(domain))
		}
		span.SetAttributes(
			attribute.Int("caa.created", report.CAACreated),
			attribute.Int("caa.skipped", report.CAASkipped),
			attribute.Int("caa.failed", report.CAAFailed),
			attribute.Int("steps.failed", len(report.FailedSteps)),
		)
	}()

	slog.Info("Processing zone", "domain", domain, "zone_id", zoneID)
	status.Send(ctx, status.NewUpdate(status.LevelProgress, "Processing zone").WithZone(domain))

	if err := p.applyCAARecords(ctx, zoneID, domain, &report); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("processing zone %s cancelled: %w", domain, err)
	}

	for _, step := range p.steps {
		p.applySetting(ctx, zoneID, domain, step, &report)
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("processing zone %s cancelled: %w", domain, err)
		}
	}

	slog.Info("Zone processed",
		"domain", domain,
		"caa_created", report.CAACreated,
		"caa_skipped", report.CAASkipped,
		"caa_failed", report.CAAFailed,
		"failed_steps", report.FailedSteps)
	status.Send(ctx, status.NewUpdate(status.LevelSuccess, "Zone processed").
		WithZone(domain).
		WithMetadata("caa_created", report.CAACreated).
		WithMetadata("caa_skipped", report.CAASkipped).
		WithMetadata("caa_failed", report.CAAFailed))

	return report, nil
}

// applyCAARecords runs every CAA task concurrently and waits for all of them.
// A panic in any task is re-raised as an error once the others have settled.
func (p *Processor) applyCAARecords(ctx context.Context, zoneID, domain string, report *ZoneReport) error {
	tasks := p.caaTasks(zoneID, domain)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		panicked any
	)

	for _, task := range tasks {
		wg.Add(1)
		go func(task caaTask) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					panicked = r
					mu.Unlock()
				}
			}()

			outcome := p.createCAARecord(ctx, task)

			mu.Lock()
			report.record(outcome)
			mu.Unlock()
		}(task)
	}
	wg.Wait()

	if panicked != nil {
		return fmt.Errorf("panic while creating CAA records for %s: %v", domain, panicked)
	}
	return nil
}

type caaTask struct {
	ZoneID     string
	RecordName string
	Authority  string
	Tag        cloudflare.CAATag
}

func (p *Processor) caaTasks(zoneID, domain string) []caaTask {
	tasks := make([]caaTask, 0, 2*len(p.caList))
	for _, authority := range p.caList {
		for _, tag := range []cloudflare.CAATag{cloudflare.CAATagIssue, cloudflare.CAATagIssueWild} {
			tasks = append(tasks, caaTask{
				ZoneID:     zoneID,
				RecordName: domain,
				Authority:  authority,
				Tag:        tag,
			})
		}
	}
	return tasks
}

func (p *Processor) createCAARecord(ctx context.Context, task caaTask) outcome {
	record := cloudflare.NewCAARecord(task.RecordName, task.Authority, task.Tag)
	update := status.NewUpdate(status.LevelSuccess, "").
		WithZone(task.RecordName).
		WithStep(stepCAA).
		WithMetadata("tag", string(task.Tag)).
		WithMetadata("authority", task.Authority)

	_, err := p.client.CreateDNSRecord(ctx, task.ZoneID, record)
	switch {
	case err == nil:
		slog.Info("CAA record added",
			"domain", task.RecordName,
			"tag", task.Tag,
			"authority", task.Authority)
		update.Message = fmt.Sprintf("CAA record (%s) for %s added", task.Tag, task.Authority)
		status.Send(ctx, update)
		return outcomeCreated

	case cloudflare.IsAlreadyExists(err):
		slog.Info("CAA record already exists, skipping",
			"domain", task.RecordName,
			"tag", task.Tag,
			"authority", task.Authority)
		update.Level = status.LevelSkip
		update.Message = fmt.Sprintf("CAA record (%s) for %s already exists", task.Tag, task.Authority)
		status.Send(ctx, update)
		return outcomeSkipped

	default:
		slog.Error("Failed to add CAA record",
			"domain", task.RecordName,
			"tag", task.Tag,
			"authority", task.Authority,
			"kind", cloudflare.Classify(err).String(),
			"error", err)
		update.Level = status.LevelError
		update.Message = fmt.Sprintf("Failed to add CAA record (%s) for %s: %v", task.Tag, task.Authority, err)
		status.Send(ctx, update)
		return outcomeFailed
	}
}

func (p *Processor) applySetting(ctx context.Context, zoneID, domain string, step settings.Setting, report *ZoneReport) {
	_, err := p.client.PatchZoneSetting(ctx, zoneID, step.Path, step.Payload)
	if err != nil {
		slog.Error("Failed to update zone setting",
			"domain", domain,
			"setting", step.Name,
			"kind", cloudflare.Classify(err).String(),
			"error", err)
		status.Send(ctx, status.NewUpdate(status.LevelError, fmt.Sprintf("Failed to update %s: %v", step.Name, err)).
			WithZone(domain).
			WithStep(step.Name))
		report.FailedSteps = append(report.FailedSteps, step.Name)
		return
	}

	slog.Info("Zone setting updated", "domain", domain, "setting", step.Name)
	status.Send(ctx, status.NewUpdate(status.LevelSuccess, step.Description).
		WithZone(domain).
		WithStep(step.Name))
	report.AppliedSteps = append(report.AppliedSteps, step.Name)
}
