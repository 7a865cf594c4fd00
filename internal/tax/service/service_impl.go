package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/dealdesk/internal/config"
	"github.com/smallbiznis/dealdesk/internal/observability/metrics"
	taxdomain "github.com/smallbiznis/dealdesk/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type resolverParam struct {
	fx.In

	Config  config.Config
	Table   *config.JurisdictionTableHolder
	Log     *zap.Logger
	Metrics *metrics.PricingMetrics `optional:"true"`
}

type resolver struct {
	home    string
	table   *config.JurisdictionTableHolder
	log     *zap.Logger
	metrics *metrics.PricingMetrics
}

func NewResolver(p resolverParam) taxdomain.Resolver {
	return &resolver{
		home:    p.Config.Proposal.HomeJurisdiction,
		table:   p.Table,
		log:     p.Log.Named("tax.service"),
		metrics: p.Metrics,
	}
}

func (r *resolver) Resolve(ctx context.Context, subject taxdomain.Subject) taxdomain.Policy {
	policy, taxCase := ResolveTaxPolicy(r.table.Get(), r.home, subject)
	r.metrics.IncTaxResolution(string(taxCase))
	if ce := r.log.Check(zap.DebugLevel, "tax policy resolved"); ce != nil {
		ce.Write(
			zap.String("country", subject.Country),
			zap.Bool("has_tax_id", subject.HasTaxID),
			zap.String("case", string(taxCase)),
			zap.String("rate", policy.Rate.String()),
			zap.Bool("enabled", policy.Enabled),
		)
	}
	return policy
}

// ResolveTaxPolicy maps a lead's jurisdiction to a tax policy. A registered
// business outside the home jurisdiction is reverse charged: the table rate and
// label are kept for display but tax is disabled. Unknown countries get the
// zero-rate default.
func ResolveTaxPolicy(table config.JurisdictionTable, home string, subject taxdomain.Subject) (taxdomain.Policy, taxdomain.Case) {
	country := strings.TrimSpace(subject.Country)
	entry, found := table.Lookup(country)

	if subject.HasTaxID && !config.SameCountry(country, home) {
		policy := taxdomain.DefaultPolicy()
		if found {
			policy.Rate = decimal.NewFromFloat(entry.Rate)
			policy.Label = entry.Label
		}
		return policy, taxdomain.CaseReverseCharge
	}

	if found {
		rate := decimal.NewFromFloat(entry.Rate)
		return taxdomain.Policy{
			Rate:    rate,
			Label:   entry.Label,
			Enabled: rate.IsPositive(),
		}, taxdomain.CaseTable
	}

	return taxdomain.DefaultPolicy(), taxdomain.CaseDefault
}
