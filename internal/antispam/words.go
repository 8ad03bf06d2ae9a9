package antispam

// Substrings matched against the lowercased message.
var defaultBlacklist = []string{
	"куплю", "продам", "купить", "продать", "реклама", "заработок",
	"казино", "ставки", "криптовалют", "биткоин", "инвестиц",
	"кредит", "займ", "микрозайм", "forex", "трейдинг",
	"бесплатно деньги", "выигрыш", "лотерея", "розыгрыш призов",
	"подписывайтесь", "переходите по ссылке", "жми на ссылку",
	"секс", "порно", "интим", "эскорт",
}

var defaultWhitelist = []string{
	"ремонт", "подшить", "ушить", "молния", "пуговиц", "заплатк",
	"штопк", "шитье", "пошив", "одежд", "брюки", "платье", "юбка",
	"куртк", "пальто", "костюм", "рубашк", "джинсы", "сколько стоит",
	"цена", "адрес", "телефон", "график", "работа", "работает", "срок", "заказ",
	"услуг", "ателье", "мастерск", "трикотаж", "кожа", "мех",
}
