package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	esterrors "github.com/kubeadapt/kubeadapt-estimator/internal/errors"
	"github.com/kubeadapt/kubeadapt-estimator/internal/observability"
	"github.com/kubeadapt/kubeadapt-estimator/internal/topology"
	"github.com/kubeadapt/kubeadapt-estimator/pkg/model"
)

const component = "migrate"

// Matcher picks the replacement for a worker instance type from the list of
// supported types. ok == false, or a replacement equal to sourceType, means
// the type stays as it is. An error aborts the migration.
type Matcher interface {
	Match(ctx context.Context, sourceType string, supported []string) (replacement string, ok bool, err error)
}

// Notifier receives the change report of a migration that substituted at
// least one instance type.
type Notifier interface {
	NotifyConversions(ctx context.Context, conversions map[string]string) error
}

// Engine produces GPU-substituted copies of cluster topologies.
type Engine struct {
	matcher   Matcher
	supported []string
	notifier  Notifier
	metrics   *observability.Metrics
	warnings  *esterrors.WarningCollector
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets the notifier receiving non-empty change reports.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithMetrics records matcher calls, conversions and durations on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithWarnings collects non-fatal issues (unmatched types, notifier errors).
func WithWarnings(wc *esterrors.WarningCollector) Option {
	return func(e *Engine) { e.warnings = wc }
}

// NewEngine creates an Engine matching against the given supported types.
func NewEngine(matcher Matcher, supported []string, opts ...Option) *Engine {
	e := &Engine{
		matcher:   matcher,
		supported: supported,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Migrate returns a new cluster in which every worker group's instance type
// is replaced by the matcher's choice. Master groups are shared with the
// source by pointer. Every instance of the result has no address, since none
// of them has been provisioned. The source is never modified.
func (e *Engine) Migrate(ctx context.Context, source *model.Cluster) (*model.Cluster, error) {
	start := time.Now()
	target, err := e.migrate(ctx, source)
	if e.metrics != nil {
		e.metrics.MigrationDuration.Observe(time.Since(start).Seconds())
		status := "success"
		if err != nil {
			status = "error"
		}
		e.metrics.MigrationsTotal.WithLabelValues(status).Inc()
	}
	return target, err
}

func (e *Engine) migrate(ctx context.Context, source *model.Cluster) (*model.Cluster, error) {
	if err := topology.Validate(source); err != nil {
		return nil, fmt.Errorf("migrate: source topology: %w", err)
	}

	conversions, err := e.substitutions(ctx, source)
	if err != nil {
		return nil, err
	}

	target := &model.Cluster{
		Name:   source.Name,
		ID:     source.ID,
		Region: source.Region,
		Zone:   source.Zone,
		State:  source.State,
		Groups: make([]*model.NodeGroup, 0, len(source.Groups)),
	}

	groupCache := make(map[string]*model.NodeGroup)
	for _, g := range source.Groups {
		if g.Role() == model.RoleMaster {
			target.Groups = append(target.Groups, g)
			continue
		}
		ng := g
		if replacement, ok := conversions[g.InstanceType]; ok {
			ng = g.WithInstanceType(replacement)
		}
		groupCache[g.ID] = ng
		target.Groups = append(target.Groups, ng)
	}

	target.Instances = make([]*model.Instance, 0, len(source.Instances))
	for _, inst := range source.Instances {
		group := inst.Group
		if cached, ok := groupCache[inst.Group.ID]; ok {
			group = cached
		}
		target.Instances = append(target.Instances, &model.Instance{
			ID:          inst.ID,
			SecondaryID: inst.SecondaryID,
			Address:     nil,
			Group:       group,
			State:       inst.State,
		})
	}

	master, workers, err := topology.PartitionNodes(target.Groups, target.Instances)
	if err != nil {
		return nil, fmt.Errorf("migrate: target topology: %w", err)
	}
	target.Master = master
	target.Workers = workers

	if len(conversions) > 0 {
		target.Conversions = conversions
		e.notify(ctx, conversions)
	}

	slog.Info("topology migrated",
		"cluster", target.ID,
		"groups", len(target.Groups),
		"instances", len(target.Instances),
		"conversions", len(conversions),
	)
	return target, nil
}

// substitutions asks the matcher once per distinct worker instance type and
// returns only the types that actually change. The cache lives for this call.
func (e *Engine) substitutions(ctx context.Context, source *model.Cluster) (map[string]string, error) {
	distinct := make(map[string]struct{})
	for _, g := range source.GroupsByRole(model.RoleWorker) {
		distinct[g.InstanceType] = struct{}{}
	}

	types := make([]string, 0, len(distinct))
	for t := range distinct {
		types = append(types, t)
	}
	sort.Strings(types)

	conversions := make(map[string]string)
	for _, sourceType := range types {
		if e.metrics != nil {
			e.metrics.MatcherCallsTotal.Inc()
		}
		replacement, ok, err := e.matcher.Match(ctx, sourceType, e.supported)
		if err != nil {
			return nil, fmt.Errorf("migrate: match %s: %w", sourceType, err)
		}
		if !ok || replacement == "" || replacement == sourceType {
			slog.Debug("no replacement for instance type", "instance_type", sourceType)
			e.warnings.Report(esterrors.EstimatorError{
				Code:      esterrors.ErrNoGPUMatch,
				Component: component,
				Message:   "no GPU replacement for " + sourceType,
			})
			continue
		}
		conversions[sourceType] = replacement
		if e.metrics != nil {
			e.metrics.ConversionsTotal.WithLabelValues(sourceType, replacement).Inc()
		}
		slog.Debug("instance type substituted", "from", sourceType, "to", replacement)
	}
	return conversions, nil
}

func (e *Engine) notify(ctx context.Context, conversions map[string]string) {
	if e.notifier == nil {
		return
	}
	report := make(map[string]string, len(conversions))
	for k, v := range conversions {
		report[k] = v
	}
	if err := e.notifier.NotifyConversions(ctx, report); err != nil {
		slog.Warn("conversion notification failed", "error", err)
		e.warnings.Report(esterrors.EstimatorError{
			Code:      esterrors.ErrNotifyFailed,
			Component: component,
			Message:   err.Error(),
		})
	}
}
