package validation

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys double as the English text.
const (
	msgType       = "Expected %s type"
	msgTypeList   = "Expected array of %s type"
	msgRequired   = "This field is required"
	msgPattern    = "Invalid format"
	msgBadPattern = "Invalid regex pattern: %s"
	msgMinLength  = "Minimum %d characters required"
	msgMaxLength  = "Maximum %d characters allowed"
	msgMinValue   = "Minimum value is %s"
	msgMaxValue   = "Maximum value is %s"
	msgMinDate    = "Date must be on or after %s"
	msgMaxDate    = "Date must be on or before %s"
	msgMinItems   = "Minimum %d items required"
	msgMaxItems   = "Maximum %d items allowed"
	msgBadBound   = "Invalid %s bound: %v"
	msgFormat     = "Invalid %s format"
	msgEnum       = "Invalid value selected"
	msgDomain     = "Value is not one of the allowed values"
)

func init() {
	fr := language.French
	for key, text := range map[string]string{
		msgType:       "Type %s attendu",
		msgTypeList:   "Tableau de type %s attendu",
		msgRequired:   "Ce champ est obligatoire",
		msgPattern:    "Format invalide",
		msgBadPattern: "Expression régulière invalide : %s",
		msgMinLength:  "%d caractères minimum requis",
		msgMaxLength:  "%d caractères maximum autorisés",
		msgMinValue:   "La valeur minimale est %s",
		msgMaxValue:   "La valeur maximale est %s",
		msgMinDate:    "La date doit être le %s ou après",
		msgMaxDate:    "La date doit être le %s ou avant",
		msgMinItems:   "%d éléments minimum requis",
		msgMaxItems:   "%d éléments maximum autorisés",
		msgBadBound:   "Borne %s invalide : %v",
		msgFormat:     "Format %s invalide",
		msgEnum:       "Valeur sélectionnée invalide",
		msgDomain:     "La valeur ne fait pas partie des valeurs autorisées",
	} {
		if err := message.SetString(fr, key, text); err != nil {
			panic(fmt.Sprintf("validation: registering %s message %q: %v", fr, key, err))
		}
	}
}

func newPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}
