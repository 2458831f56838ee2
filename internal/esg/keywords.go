package esg

import "esgpulse/pkg/contracts/domain"

// Keywords maps each category to its ordered keyword list. The list order is
// load-bearing: it decides finding order in scan output and breaks ties when
// a table header matches keywords from more than one category. Instances are
// treated as read-only after construction and are safe to share across
// concurrent pipeline invocations.
type Keywords map[domain.Category][]string

// DefaultKeywords returns the standard ESG keyword configuration. Callers
// that need a custom vocabulary (tests included) can construct their own
// Keywords value instead of mutating this one.
func DefaultKeywords() Keywords {
	return Keywords{
		domain.CategoryEnvironmental: {
			"carbon", "emissions", "co2", "greenhouse gas", "ghg", "renewable energy",
			"water consumption", "water usage", "waste", "recycling", "sustainability",
			"biodiversity", "deforestation", "climate change", "energy efficiency",
			"scope 1", "scope 2", "scope 3", "carbon footprint", "environmental impact",
		},
		domain.CategorySocial: {
			"diversity", "inclusion", "employee", "workforce", "human rights",
			"community", "safety", "health", "training", "labor", "gender",
			"ethnicity", "workplace", "equal opportunity", "social impact",
			"customer satisfaction", "data privacy", "product safety",
		},
		domain.CategoryGovernance: {
			"board", "directors", "executive", "compensation", "ethics",
			"compliance", "risk management", "audit", "transparency",
			"accountability", "anti-corruption", "whistleblower",
			"conflicts of interest", "shareholder", "stakeholder",
		},
	}
}
