package cost

import (
	"sort"

	"github.com/shopspring/decimal"

	"terraform-cost-analyzer/plan"
)

// Aggregator rolls per-resource costs into module and plan-level
// summaries. It holds no state between calls; aggregating the same
// inputs twice yields identical results.
type Aggregator struct {
	currency string
}

// NewAggregator creates an aggregator reporting in the given currency.
func NewAggregator(currency string) *Aggregator {
	if currency == "" {
		currency = "USD"
	}
	return &Aggregator{currency: currency}
}

// Aggregate computes the plan summary and, when a previous analysis is
// supplied, annotates each resource with its previous cost and signed
// change. Forward-looking totals cover create, update and no-change
// resources; deletions keep their individual monthly cost for
// transparency but do not count toward future spend, since the plan
// describes a transition rather than a final state.
//
// Deltas match resources by address. Resources present only in the
// previous analysis are absent from the current resource list and
// therefore invisible to the delta.
func (a *Aggregator) Aggregate(resources []*ResourceCost, previous *CostAnalysis) CostSummary {
	summary := CostSummary{
		TotalResources:   len(resources),
		TotalHourlyCost:  decimal.Zero,
		TotalMonthlyCost: decimal.Zero,
		Currency:         a.currency,
	}

	var previousByAddress map[string]decimal.Decimal
	if previous != nil {
		previousByAddress = make(map[string]decimal.Decimal, len(previous.Resources))
		for _, rc := range previous.Resources {
			previousByAddress[rc.Address] = rc.MonthlyCost
		}
	}

	for _, rc := range resources {
		switch rc.Action {
		case plan.ActionCreate:
			summary.ResourcesToAdd++
		case plan.ActionUpdate:
			summary.ResourcesToUpdate++
		case plan.ActionDelete:
			summary.ResourcesToDelete++
		}

		if previousByAddress != nil {
			if prev, ok := previousByAddress[rc.Address]; ok {
				prevCopy := prev
				change := rc.MonthlyCost.Sub(prev)
				rc.PreviousCost = &prevCopy
				rc.CostChange = &change
			}
		}

		if rc.Action == plan.ActionDelete {
			continue
		}

		summary.TotalHourlyCost = summary.TotalHourlyCost.Add(rc.HourlyCost)
		summary.TotalMonthlyCost = summary.TotalMonthlyCost.Add(rc.MonthlyCost)
		summary.Breakdown.add(rc.Metadata.NormalizedType, rc.MonthlyCost)
	}

	if previous != nil {
		prevTotal := previous.Summary.TotalMonthlyCost
		change := summary.TotalMonthlyCost.Sub(prevTotal)
		summary.PreviousTotalMonthlyCost = &prevTotal
		summary.TotalMonthlyCostChange = &change
	}

	return summary
}

// GroupModules rolls resources up by module address, the root module
// last after sorting. Deletions are excluded from module totals the
// same way they are excluded from the summary.
func (a *Aggregator) GroupModules(resources []*ResourceCost, previous *CostAnalysis) []ModuleCost {
	byAddress := make(map[string]*ModuleCost)

	for _, rc := range resources {
		addr := rc.ModuleAddress
		if addr == "" {
			addr = RootModuleAddress
		}
		mc, ok := byAddress[addr]
		if !ok {
			mc = &ModuleCost{
				Address:     addr,
				HourlyCost:  decimal.Zero,
				MonthlyCost: decimal.Zero,
			}
			byAddress[addr] = mc
		}
		mc.ResourceCount++
		if rc.Action == plan.ActionDelete {
			continue
		}
		mc.HourlyCost = mc.HourlyCost.Add(rc.HourlyCost)
		mc.MonthlyCost = mc.MonthlyCost.Add(rc.MonthlyCost)
	}

	if previous != nil {
		prevModules := make(map[string]decimal.Decimal, len(previous.Modules))
		for _, mc := range previous.Modules {
			prevModules[mc.Address] = mc.MonthlyCost
		}
		for _, mc := range byAddress {
			if prev, ok := prevModules[mc.Address]; ok {
				prevCopy := prev
				change := mc.MonthlyCost.Sub(prev)
				mc.PreviousCost = &prevCopy
				mc.CostChange = &change
			}
		}
	}

	modules := make([]ModuleCost, 0, len(byAddress))
	for _, mc := range byAddress {
		modules = append(modules, *mc)
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].Address < modules[j].Address })
	return modules
}
