package rag

import "strings"

// Intent is a coarse user-goal label used to pick a response framing.
type Intent string

const (
	IntentNone              Intent = ""
	IntentSearchProduct     Intent = "search_product"
	IntentCheckAvailability Intent = "check_availability"
	IntentGetPrice          Intent = "get_price"
	IntentFindDiscount      Intent = "find_discount"
	IntentRecommend         Intent = "recommend"
	IntentCompare           Intent = "compare"
	IntentCategoryBrowse    Intent = "category_browse"
	IntentCustomOrder       Intent = "custom_order"
	IntentCareInfo          Intent = "care_info"
)

// PatternGroup is one row of an ordered first-match table.
type PatternGroup struct {
	Name     string
	Patterns []string
}

// SynonymGroup maps a canonical term to its variants.
type SynonymGroup struct {
	Canonical string
	Variants  []string
}

// Tables holds the fixed lookup data the engine scores with.
// A Tables value is built once and must not be mutated afterwards.
type Tables struct {
	Stopwords      map[string]struct{}
	Synonyms       []SynonymGroup
	Intents        []PatternGroup
	Categories     []PatternGroup
	ProductSignals []string
	Colors         []PatternGroup
	Sizes          []string
}

var defaultStopwords = []string{
	"a", "je", "to", "na", "v", "sa", "so", "pre", "ako", "že", "ma", "mi", "me", "si", "su", "som",
	"ale", "ani", "az", "ak", "bo", "by", "co", "ci", "do", "ho", "im", "ju", "ka", "ku", "ly",
	"ne", "ni", "no", "od", "po", "pri", "ro", "ta", "te", "ti", "tu", "ty", "uz", "vo", "za",
	"mate", "mam", "chcem", "hladam", "potrebujem",
}

var defaultSynonyms = []SynonymGroup{
	{"cena", []string{"cenny", "ceny", "kolko", "stoji", "price", "peniaze", "platba", "cost", "cennik", "eur", "euro"}},
	{"nausnice", []string{"nausnica", "earrings", "earring", "sperk", "sperky", "jewelry", "ozdoba"}},
	{"produkt", []string{"tovar", "vyrobok", "artikl", "polozka", "item", "product", "produkty", "kusok", "par"}},
	{"dostupny", []string{"skladom", "k dispozicii", "na sklade", "available", "mame", "dostupnost", "dostupne", "stock"}},
	{"nedostupny", []string{"vypredane", "nie je skladom", "unavailable", "out of stock", "nemame", "nedostupne"}},
	{"zlava", []string{"akcia", "zľava", "discount", "sale", "vyhodna cena", "zlacnene", "promo", "kupón", "kupon", "kod", "newsletter"}},
	{"kupit", []string{"objednat", "nakupit", "buy", "purchase", "order", "pridat do kosika", "chcem", "kúpiť"}},
	{"hladat", []string{"najst", "vyhladat", "search", "find", "kde", "aky", "ktory", "odporucit", "poradit"}},
	{"kategoria", []string{"typ", "druh", "category", "kolekcia", "sekcia", "rada", "vianocna", "svadobna", "jesenna"}},
	{"farba", []string{"color", "colour", "odtien", "farby", "farebny", "cierna", "biela", "cervena", "zlata", "strieborne", "bordova"}},
	{"kontakt", []string{"spojenie", "informacie", "udaje", "email", "telefon", "adresa", "michaela", "miska"}},
	{"pomoc", []string{"podpora", "help", "support", "asistencia", "pomoc", "otazka"}},
	{"doprava", []string{"dorucenie", "shipping", "delivery", "postovne", "zasielka", "kurier", "posta", "packeta", "balíkobox"}},
	{"vratenie", []string{"reklamacia", "return", "vymena", "refund", "vratit", "reklamovat", "poskodene"}},
	{"novinka", []string{"new", "nove", "novinky", "najnovsie", "fresh", "prave doslo"}},
	{"popularny", []string{"top", "bestseller", "najpredavanejsie", "obľúbené", "hit", "popular"}},
	{"handmade", []string{"rucne", "rucna", "vyrabane", "original", "unikat", "jediny", "polymer", "polymerova"}},
	{"starostlivost", []string{"udrzba", "cistenie", "osetrovanie", "ako sa starat", "vydrzia"}},
	{"osobny", []string{"vyzdvihnutie", "odber", "kosice", "osobne"}},
	{"zakazka", []string{"na mieru", "vlastny", "personalizacia", "na zelanie", "custom"}},
}

// Declaration order matters: several patterns overlap and the first match wins.
var defaultIntents = []PatternGroup{
	{string(IntentSearchProduct), []string{"hladam", "najdi", "chcem", "potrebujem", "mate", "ponukate", "máte", "kde najdem", "nausnice", "sperk"}},
	{string(IntentCheckAvailability), []string{"skladom", "dostupny", "dostupne", "mam k dispozicii", "je", "su", "availability"}},
	{string(IntentGetPrice), []string{"cena", "kolko stoji", "price", "koľko", "za kolko", "koľko stojí"}},
	{string(IntentFindDiscount), []string{"zlava", "akcia", "zlacnene", "discount", "promo", "kupón", "newsletter", "10%"}},
	{string(IntentRecommend), []string{"odporuc", "porad", "navrhni", "co odporucas", "co by si", "najlepsie", "doporučíš", "dar", "darcek"}},
	{string(IntentCompare), []string{"porovnaj", "rozdiel", "compare", "lepsi", "horsí", "vs"}},
	{string(IntentCategoryBrowse), []string{"kategoria", "kolekcia", "vsetky", "zobraz", "ukaz", "ponuka", "vianocne", "svadobne", "jesenne"}},
	{string(IntentCustomOrder), []string{"na mieru", "zakazka", "custom", "vlastny dizajn", "personalizacia", "na zelanie"}},
	{string(IntentCareInfo), []string{"starostlivost", "udrzba", "cistenie", "ako sa starat", "vydrzia", "osetrovanie"}},
}

var defaultCategories = []PatternGroup{
	{"product", []string{"produkt", "tovar", "mate", "ponukate", "hladam", "kupit", "objednat"}},
	{"availability", []string{"skladom", "dostupny", "dostupne", "k dispozicii", "mame"}},
	{"pricing", []string{"cena", "kolko", "stoji", "price", "cennik", "eur", "euro"}},
	{"discount", []string{"zlava", "akcia", "promo", "zlacnene", "kupón", "kupon", "kod"}},
	{"category", []string{"kategoria", "typ", "druh", "kolekcia", "sekcia"}},
	{"shipping", []string{"doprava", "dorucenie", "postovne", "zasielka", "kurier"}},
	{"returns", []string{"vratenie", "reklamacia", "vymena", "refund"}},
	{"contact", []string{"adresa", "lokacia", "kde", "kontakt", "telefon", "email"}},
	{"support", []string{"podpora", "pomoc", "problem", "nefunguje"}},
	{"recommendation", []string{"odporuc", "porad", "navrhni", "najlepsie", "top", "bestseller"}},
}

var defaultProductSignals = []string{
	"produkt", "tovar", "skladom", "dostupny", "kupit", "objednat", "cena", "kolko stoji",
	"mate", "ponukate", "zlava", "akcia", "kategoria", "velkost", "farba", "hladam",
	"najst", "odporuc", "porovnaj", "novinka", "bestseller", "sortiment",
}

var defaultColors = []PatternGroup{
	{"cierna", []string{"cierna", "cierny", "cierne", "black"}},
	{"biela", []string{"biela", "biely", "biele", "white"}},
	{"cervena", []string{"cervena", "cerveny", "cervene", "red"}},
	{"modra", []string{"modra", "modry", "modre", "blue", "navy"}},
	{"zelena", []string{"zelena", "zeleny", "zelene", "green"}},
	{"zlta", []string{"zlta", "zlty", "zlte", "yellow"}},
	{"oranzova", []string{"oranzova", "oranzovy", "oranzove", "orange"}},
	{"ruzova", []string{"ruzova", "ruzovy", "ruzove", "pink"}},
	{"siva", []string{"siva", "sivy", "sive", "grey", "gray"}},
	{"hneda", []string{"hneda", "hnedy", "hnede", "brown"}},
}

var defaultSizes = []string{"xs", "s", "m", "l", "xl", "xxl", "xxxl", "2xl", "3xl"}

// DefaultTables returns the Slovak/English tables for the Klema Earrings shop.
// Accented table terms are folded to their normalized spelling. Terms carrying
// punctuation (such as "10%") can never occur in a normalized query and are dropped.
func DefaultTables() *Tables {
	return NewTables(defaultStopwords, defaultSynonyms, defaultIntents, defaultCategories,
		defaultProductSignals, defaultColors, defaultSizes)
}

// NewTables builds a normalized, read-only Tables value from raw data.
func NewTables(
	stopwords []string,
	synonyms []SynonymGroup,
	intents, categories []PatternGroup,
	productSignals []string,
	colors []PatternGroup,
	sizes []string,
) *Tables {
	t := &Tables{
		Stopwords:      make(map[string]struct{}, len(stopwords)),
		Synonyms:       make([]SynonymGroup, 0, len(synonyms)),
		Intents:        normalizeGroups(intents),
		Categories:     normalizeGroups(categories),
		ProductSignals: normalizeList(productSignals),
		Colors:         normalizeGroups(colors),
		Sizes:          normalizeList(sizes),
	}
	for _, w := range stopwords {
		t.Stopwords[Normalize(w)] = struct{}{}
	}
	for _, g := range synonyms {
		t.Synonyms = append(t.Synonyms, SynonymGroup{
			Canonical: Normalize(g.Canonical),
			Variants:  normalizeList(g.Variants),
		})
	}
	return t
}

// IsStopword reports whether the normalized word is a stopword.
func (t *Tables) IsStopword(word string) bool {
	_, ok := t.Stopwords[word]
	return ok
}

func normalizeGroups(groups []PatternGroup) []PatternGroup {
	out := make([]PatternGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, PatternGroup{Name: g.Name, Patterns: normalizeList(g.Patterns)})
	}
	return out
}

func normalizeList(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		n := Normalize(item)
		if n == "" || n != foldDiacritics(strings.ToLower(item)) {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
