package config

import (
	"sort"
	"strings"
	"sync"
)

// RegionKey identifies one of the canonical coastal/inland regions a
// property can be routed to.
type RegionKey string

const (
	RegionCostaBlancaNorth       RegionKey = "costa-blanca-north"
	RegionCostaBlancaNorthInland RegionKey = "costa-blanca-north-inland"
	RegionCostaBlancaSouth       RegionKey = "costa-blanca-south"
	RegionCostaBlancaSouthInland RegionKey = "costa-blanca-south-inland"
	RegionCostaCalida            RegionKey = "costa-calida"
	RegionCostaCalidaInland      RegionKey = "costa-calida-inland"
)

// Region holds display metadata for a region key.
type Region struct {
	Key      RegionKey `json:"key"`
	Label    string    `json:"label"`
	IsInland bool      `json:"is_inland"`
}

// Regions is the fixed set of supported regions.
var Regions = map[RegionKey]Region{
	RegionCostaBlancaNorth:       {Key: RegionCostaBlancaNorth, Label: "Costa Blanca North"},
	RegionCostaBlancaNorthInland: {Key: RegionCostaBlancaNorthInland, Label: "Costa Blanca North Inland", IsInland: true},
	RegionCostaBlancaSouth:       {Key: RegionCostaBlancaSouth, Label: "Costa Blanca South"},
	RegionCostaBlancaSouthInland: {Key: RegionCostaBlancaSouthInland, Label: "Costa Blanca South Inland", IsInland: true},
	RegionCostaCalida:            {Key: RegionCostaCalida, Label: "Costa Calida"},
	RegionCostaCalidaInland:      {Key: RegionCostaCalidaInland, Label: "Costa Calida Inland", IsInland: true},
}

// townAliases normalizes feed spelling variants to the canonical town name
// used in the lookup table.
var townAliases = map[string]string{
	"xabia":            "javea",
	"jávea":            "javea",
	"xàbia":            "javea",
	"javea xabia":      "javea",
	"jávea xàbia":      "javea",
	"alfas del pi":     "alfaz del pi",
	"alfàs del pi":     "alfaz del pi",
	"l'alfàs del pi":   "alfaz del pi",
	"moraira_teulada":  "moraira",
	"moraira-teulada":  "moraira",
	"moraira teulada":  "moraira",
	"teulada-moraira":  "moraira",
	"teulada moraira":  "moraira",
	"dénia":            "denia",
	"calp":             "calpe",
	"guardamar":        "guardamar del segura",
	"orihuela-costa":   "orihuela costa",
	"san miguel":       "san miguel de salinas",
	"montesinos":       "los montesinos",
	"quesada":          "ciudad quesada",
	"benijófar":        "benijofar",
	"almoradí":         "almoradi",
	"benejúzar":        "benejuzar",
	"redován":          "redovan",
	"jalón":            "jalon",
	"xalo":             "jalon",
}

var (
	townRegionLock sync.RWMutex

	// townToRegion is the definitive lookup table. A town missing from it is
	// reported as unclassified, never guessed.
	townToRegion = map[string]RegionKey{
		// Costa Blanca North, coastal
		"denia":          RegionCostaBlancaNorth,
		"javea":          RegionCostaBlancaNorth,
		"moraira":        RegionCostaBlancaNorth,
		"teulada":        RegionCostaBlancaNorth,
		"benissa":        RegionCostaBlancaNorth,
		"calpe":          RegionCostaBlancaNorth,
		"altea":          RegionCostaBlancaNorth,
		"alfaz del pi":   RegionCostaBlancaNorth,
		"albir":          RegionCostaBlancaNorth,
		"benidorm":       RegionCostaBlancaNorth,
		"villajoyosa":    RegionCostaBlancaNorth,
		"benitachell":    RegionCostaBlancaNorth,
		"cumbre del sol": RegionCostaBlancaNorth,

		// Costa Blanca North, inland
		"jalon":               RegionCostaBlancaNorthInland,
		"lliber":              RegionCostaBlancaNorthInland,
		"parcent":             RegionCostaBlancaNorthInland,
		"murla":               RegionCostaBlancaNorthInland,
		"alcalali":            RegionCostaBlancaNorthInland,
		"pedreguer":           RegionCostaBlancaNorthInland,
		"ondara":              RegionCostaBlancaNorthInland,
		"gata de gorgos":      RegionCostaBlancaNorthInland,
		"polop":               RegionCostaBlancaNorthInland,
		"la nucia":            RegionCostaBlancaNorthInland,
		"relleu":              RegionCostaBlancaNorthInland,
		"finestrat":           RegionCostaBlancaNorthInland,
		"sella":               RegionCostaBlancaNorthInland,
		"orxeta":              RegionCostaBlancaNorthInland,
		"callosa d'en sarria": RegionCostaBlancaNorthInland,
		"tarbena":             RegionCostaBlancaNorthInland,
		"benigembla":          RegionCostaBlancaNorthInland,

		// Costa Blanca South, coastal
		"torrevieja":            RegionCostaBlancaSouth,
		"orihuela costa":        RegionCostaBlancaSouth,
		"punta prima":           RegionCostaBlancaSouth,
		"playa flamenca":        RegionCostaBlancaSouth,
		"la zenia":              RegionCostaBlancaSouth,
		"cabo roig":             RegionCostaBlancaSouth,
		"campoamor":             RegionCostaBlancaSouth,
		"pilar de la horadada":  RegionCostaBlancaSouth,
		"mil palmeras":          RegionCostaBlancaSouth,
		"torre de la horadada":  RegionCostaBlancaSouth,
		"guardamar del segura":  RegionCostaBlancaSouth,
		"santa pola":            RegionCostaBlancaSouth,
		"gran alacant":          RegionCostaBlancaSouth,
		"alicante":              RegionCostaBlancaSouth,

		// Costa Blanca South, inland (Vega Baja)
		"algorfa":               RegionCostaBlancaSouthInland,
		"la finca":              RegionCostaBlancaSouthInland,
		"la finca golf":         RegionCostaBlancaSouthInland,
		"rojales":               RegionCostaBlancaSouthInland,
		"benijofar":             RegionCostaBlancaSouthInland,
		"formentera del segura": RegionCostaBlancaSouthInland,
		"formentera":            RegionCostaBlancaSouthInland,
		"san fulgencio":         RegionCostaBlancaSouthInland,
		"daya nueva":            RegionCostaBlancaSouthInland,
		"daya vieja":            RegionCostaBlancaSouthInland,
		"almoradi":              RegionCostaBlancaSouthInland,
		"catral":                RegionCostaBlancaSouthInland,
		"dolores":               RegionCostaBlancaSouthInland,
		"bigastro":              RegionCostaBlancaSouthInland,
		"jacarilla":             RegionCostaBlancaSouthInland,
		"benejuzar":             RegionCostaBlancaSouthInland,
		"redovan":               RegionCostaBlancaSouthInland,
		"callosa de segura":     RegionCostaBlancaSouthInland,
		"cox":                   RegionCostaBlancaSouthInland,
		"rafal":                 RegionCostaBlancaSouthInland,
		"benferri":              RegionCostaBlancaSouthInland,
		"san miguel de salinas": RegionCostaBlancaSouthInland,
		"las salinas":           RegionCostaBlancaSouthInland,
		"los montesinos":        RegionCostaBlancaSouthInland,
		"orihuela":              RegionCostaBlancaSouthInland,
		"ciudad quesada":        RegionCostaBlancaSouthInland,
		"vistabella":            RegionCostaBlancaSouthInland,
		"vistabella golf":       RegionCostaBlancaSouthInland,
		"villamartin":           RegionCostaBlancaSouthInland,
		"las ramblas":           RegionCostaBlancaSouthInland,
		"campoamor golf":        RegionCostaBlancaSouthInland,
		"las colinas":           RegionCostaBlancaSouthInland,

		// Costa Calida, coastal (Mar Menor)
		"san javier":              RegionCostaCalida,
		"san pedro del pinatar":   RegionCostaCalida,
		"santiago de la ribera":   RegionCostaCalida,
		"los alcazares":           RegionCostaCalida,
		"la manga":                RegionCostaCalida,
		"la manga del mar menor":  RegionCostaCalida,
		"los urrutias":            RegionCostaCalida,
		"los nietos":              RegionCostaCalida,
		"mar de cristal":          RegionCostaCalida,
		"playa honda":             RegionCostaCalida,
		"cartagena":               RegionCostaCalida,
		"mazarron":                RegionCostaCalida,
		"puerto de mazarron":      RegionCostaCalida,
		"aguilas":                 RegionCostaCalida,

		// Costa Calida, inland (Murcia)
		"torre pacheco":    RegionCostaCalidaInland,
		"sucina":           RegionCostaCalidaInland,
		"roldan":           RegionCostaCalidaInland,
		"balsicas":         RegionCostaCalidaInland,
		"fuente alamo":     RegionCostaCalidaInland,
		"alhama de murcia": RegionCostaCalidaInland,
		"totana":           RegionCostaCalidaInland,
		"librilla":         RegionCostaCalidaInland,
		"mula":             RegionCostaCalidaInland,
		"murcia":           RegionCostaCalidaInland,
	}
)

// NormalizeTownName lowercases, trims and resolves spelling variants of a
// feed town name.
func NormalizeTownName(town string) string {
	t := strings.ToLower(strings.TrimSpace(town))
	if canonical, ok := townAliases[t]; ok {
		return canonical
	}
	return t
}

// RegionForTown maps a town name to its region. The lookup is a
// case-insensitive exact match after alias normalization; an unknown town
// returns "" so the caller can surface it instead of misclassifying.
func RegionForTown(town string) RegionKey {
	townRegionLock.RLock()
	defer townRegionLock.RUnlock()
	return townToRegion[NormalizeTownName(town)]
}

// IsInlandRegion reports whether the key names one of the inland regions.
func IsInlandRegion(key RegionKey) bool {
	return Regions[key].IsInland
}

// InlandRegions returns the inland subset of the region set.
func InlandRegions() []Region {
	var regions []Region
	for _, r := range Regions {
		if r.IsInland {
			regions = append(regions, r)
		}
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Key < regions[j].Key })
	return regions
}

// TownsForRegion returns the known towns mapped to a region, sorted.
func TownsForRegion(key RegionKey) []string {
	townRegionLock.RLock()
	defer townRegionLock.RUnlock()

	var towns []string
	for town, region := range townToRegion {
		if region == key {
			towns = append(towns, town)
		}
	}
	sort.Strings(towns)
	return towns
}
