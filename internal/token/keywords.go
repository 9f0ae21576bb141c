package token

var keywords = map[string]Kind{
	"let":      KwLet,
	"print":    KwPrint,
	"assert":   KwAssert,
	"reflexpr": KwReflexpr,
	"typename": KwTypename,
	"true":     KwTrue,
	"false":    KwFalse,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые: только lowercase версии распознаются.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
