package normalize

import (
	"strings"
)

// CountryResult 国家归一化结果
type CountryResult struct {
	Normalized string // ISO 代码或原文
	Raw        string
}

// 中英文国家名/别名 → ISO 3166-1 alpha-2
// 键为规范化（半角、去空格、小写）后的形式
var countryDict = map[string]string{
	"美国": "US", "usa": "US", "us": "US", "unitedstates": "US", "america": "US",
	"英国": "GB", "uk": "GB", "gb": "GB", "unitedkingdom": "GB", "英國": "GB",
	"德国": "DE", "germany": "DE", "de": "DE",
	"法国": "FR", "france": "FR", "fr": "FR",
	"意大利": "IT", "italy": "IT", "it": "IT",
	"西班牙": "ES", "spain": "ES", "es": "ES",
	"荷兰": "NL", "netherlands": "NL", "nl": "NL",
	"比利时": "BE", "belgium": "BE", "be": "BE",
	"瑞典": "SE", "sweden": "SE", "se": "SE",
	"丹麦": "DK", "denmark": "DK", "dk": "DK",
	"挪威": "NO", "norway": "NO",
	"芬兰": "FI", "finland": "FI", "fi": "FI",
	"瑞士": "CH", "switzerland": "CH",
	"奥地利": "AT", "austria": "AT", "at": "AT",
	"波兰": "PL", "poland": "PL", "pl": "PL",
	"葡萄牙": "PT", "portugal": "PT", "pt": "PT",
	"爱尔兰": "IE", "ireland": "IE", "ie": "IE",
	"希腊": "GR", "greece": "GR", "gr": "GR",
	"捷克": "CZ", "czech": "CZ", "czechia": "CZ",
	"匈牙利": "HU", "hungary": "HU", "hu": "HU",
	"罗马尼亚": "RO", "romania": "RO", "ro": "RO",
	"日本": "JP", "japan": "JP", "jp": "JP",
	"韩国": "KR", "korea": "KR", "southkorea": "KR", "kr": "KR",
	"新加坡": "SG", "singapore": "SG", "sg": "SG",
	"马来西亚": "MY", "malaysia": "MY", "my": "MY",
	"泰国": "TH", "thailand": "TH", "th": "TH",
	"越南": "VN", "vietnam": "VN", "vn": "VN",
	"菲律宾": "PH", "philippines": "PH", "ph": "PH",
	"印度尼西亚": "ID", "印尼": "ID", "indonesia": "ID", "id": "ID",
	"印度": "IN", "india": "IN", "in": "IN",
	"澳大利亚": "AU", "澳洲": "AU", "australia": "AU", "au": "AU",
	"新西兰": "NZ", "newzealand": "NZ", "nz": "NZ",
	"加拿大": "CA", "canada": "CA", "ca": "CA",
	"墨西哥": "MX", "mexico": "MX", "mx": "MX",
	"巴西": "BR", "brazil": "BR", "br": "BR",
	"智利": "CL", "chile": "CL", "cl": "CL",
	"阿根廷": "AR", "argentina": "AR", "ar": "AR",
	"俄罗斯": "RU", "russia": "RU", "ru": "RU",
	"乌克兰": "UA", "ukraine": "UA", "ua": "UA",
	"土耳其": "TR", "turkey": "TR", "tr": "TR",
	"以色列": "IL", "israel": "IL", "il": "IL",
	"沙特阿拉伯": "SA", "沙特": "SA", "saudiarabia": "SA", "sa": "SA",
	"阿联酋": "AE", "uae": "AE", "ae": "AE", "unitedarabemirates": "AE",
	"南非": "ZA", "southafrica": "ZA", "za": "ZA",
	"埃及": "EG", "egypt": "EG", "eg": "EG",
	"中国": "CN", "china": "CN", "cn": "CN",
	"中国香港": "HK", "香港": "HK", "hongkong": "HK", "hk": "HK",
	"中国台湾": "TW", "台湾": "TW", "taiwan": "TW", "tw": "TW",
	"中国澳门": "MO", "澳门": "MO", "macau": "MO", "macao": "MO", "mo": "MO",
}

// NormalizeCountry 国家名归一化
// 命中字典返回 ISO 代码；带排除括号的区域标签（如 "欧洲(不含英国)"）原样透传；
// 其余返回去空格后的原文，从不失败
func NormalizeCountry(raw string) CountryResult {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return CountryResult{Normalized: "", Raw: raw}
	}

	norm := Normalize(trimmed)

	// 区域标签：带排除说明的括号不做映射
	if strings.Contains(norm, "(") && (strings.Contains(norm, "不含") || strings.Contains(norm, "除")) {
		return CountryResult{Normalized: trimmed, Raw: raw}
	}

	key := strings.ToLower(strings.ReplaceAll(norm, " ", ""))
	if code, ok := countryDict[key]; ok {
		return CountryResult{Normalized: code, Raw: raw}
	}

	return CountryResult{Normalized: trimmed, Raw: raw}
}

// IsKnownCountry 文本是否能映射到已知国家
func IsKnownCountry(raw string) bool {
	norm := Normalize(raw)
	key := strings.ToLower(strings.ReplaceAll(norm, " ", ""))
	_, ok := countryDict[key]
	return ok
}
