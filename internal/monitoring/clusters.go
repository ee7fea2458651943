package monitoring

import (
	"strings"

	"github.com/andresuchdata/mpstock/internal/domain"
)

// DefaultCluster collects warehouses that match no keyword.
const DefaultCluster = "Прочие"

// ClusterKeywords maps a logistics cluster to lowercase warehouse name fragments.
type ClusterKeywords struct {
	Name     string
	Keywords []string
}

// WBClusters follows the official WB warehouse cluster split. Order matters:
// the first cluster with a matching keyword wins.
var WBClusters = []ClusterKeywords{
	{Name: "Центральный", Keywords: []string{
		"пушкино", "вёшки", "вешки", "иваново", "подольск", "радумля", "обухово", "чашниково",
		"воронеж", "истра", "коледино", "домодедово", "никольское", "тверь", "голицыно",
		"софьино", "ярославль", "цифровой", "рязань", "тюшевское", "сабурово", "владимир",
		"тула", "котовск", "электросталь", "белая дача", "щербинка", "чехов",
	}},
	{Name: "Северо-Западный", Keywords: []string{
		"вологда", "шушары", "красный бор", "санкт-петербург", "спб", "уткина",
	}},
	{Name: "Приволжский", Keywords: []string{
		"ижевск", "кузнецк", "пенза", "самара", "новосемейкино", "сарапул", "казань",
	}},
	{Name: "Уральский", Keywords: []string{
		"нижний тагил", "челябинск", "екатеринбург",
	}},
	{Name: "Южный + Северо-Кавказский", Keywords: []string{
		"крыловская", "краснодар", "волгоград", "невинномысск", "тихорецкая",
	}},
	{Name: "Дальневосточный + Сибирский", Keywords: []string{
		"хабаровск", "барнаул", "владивосток", "юрга", "новосибирск",
	}},
	{Name: "Казахстан", Keywords: []string{"байсерке", "атакент", "актобе", "астана"}},
	{Name: "Беларусь", Keywords: []string{"минск", "брест", "гродно"}},
	{Name: "Узбекистан", Keywords: []string{"ташкент"}},
	{Name: "Армения", Keywords: []string{"ереван"}},
	{Name: "Грузия", Keywords: []string{"тбилиси"}},
}

// OzonClusters follows the Ozon FBO cluster split.
var OzonClusters = []ClusterKeywords{
	{Name: "Москва, МО и Дальние регионы", Keywords: []string{
		"хоругвино", "ногинск", "пушкино", "софьино", "радумля", "павло", "слободское",
		"петровское", "жуковский", "домодедово", "гривно",
	}},
	{Name: "Санкт-Петербург и СЗО", Keywords: []string{
		"колпино", "шушары", "волхонка", "санкт-петербург", "спб", "бугры",
	}},
	{Name: "Казань", Keywords: []string{"казань", "кзн", "столбище", "нижний новгород"}},
	{Name: "Самара", Keywords: []string{"самара"}},
	{Name: "Уфа", Keywords: []string{"уфа"}},
	{Name: "Оренбург", Keywords: []string{"оренбург"}},
	{Name: "Краснодар", Keywords: []string{"адыгейск", "южный обход", "новороссийск"}},
	{Name: "Ростов", Keywords: []string{"ростов"}},
	{Name: "Воронеж", Keywords: []string{"воронеж"}},
	{Name: "Саратов", Keywords: []string{"волгоград", "саратов"}},
	{Name: "Невинномысск", Keywords: []string{"невинномысск"}},
	{Name: "Махачкала", Keywords: []string{"махачкала"}},
	{Name: "Красноярск", Keywords: []string{"красноярск"}},
	{Name: "Новосибирск", Keywords: []string{"новосибирск"}},
	{Name: "Омск", Keywords: []string{"омск"}},
	{Name: "Екатеринбург", Keywords: []string{"екатеринбург"}},
	{Name: "Пермь", Keywords: []string{"пермь"}},
	{Name: "Тюмень", Keywords: []string{"тюмень"}},
	{Name: "Дальний Восток", Keywords: []string{"хабаровск"}},
	{Name: "Тверь", Keywords: []string{"тверь"}},
	{Name: "Ярославль", Keywords: []string{"ярославль"}},
	{Name: "Калининград", Keywords: []string{"калининград"}},
	{Name: "Беларусь", Keywords: []string{"минск"}},
	{Name: "Астана", Keywords: []string{"астана"}},
	{Name: "Алматы", Keywords: []string{"алматы"}},
	{Name: "Армения", Keywords: []string{"ереван"}},
}

// ClusterResolver maps warehouse names to logistics clusters per marketplace.
type ClusterResolver struct {
	tables   map[domain.Marketplace][]ClusterKeywords
	fallback string
}

// NewClusterResolver builds a resolver over the given tables.
func NewClusterResolver(tables map[domain.Marketplace][]ClusterKeywords, fallback string) *ClusterResolver {
	if fallback == "" {
		fallback = DefaultCluster
	}
	return &ClusterResolver{tables: tables, fallback: fallback}
}

// DefaultClusterResolver uses the built-in WB and Ozon tables.
func DefaultClusterResolver() *ClusterResolver {
	return NewClusterResolver(map[domain.Marketplace][]ClusterKeywords{
		domain.MarketplaceWB:   WBClusters,
		domain.MarketplaceOzon: OzonClusters,
	}, DefaultCluster)
}

// Resolve returns the first cluster, in table order, that has a keyword
// contained in the lowercased warehouse name. Unknown marketplaces and
// unmatched names resolve to the fallback cluster.
func (r *ClusterResolver) Resolve(warehouse string, mp domain.Marketplace) string {
	name := strings.ToLower(warehouse)
	for _, cluster := range r.tables[mp] {
		for _, keyword := range cluster.Keywords {
			if strings.Contains(name, keyword) {
				return cluster.Name
			}
		}
	}
	return r.fallback
}

// Fallback returns the cluster used for unmatched warehouses.
func (r *ClusterResolver) Fallback() string {
	return r.fallback
}
