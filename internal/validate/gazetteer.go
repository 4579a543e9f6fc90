package validate

// Communes is the gazetteer of Casablanca-area commune and arrondissement
// names used for best-effort canonicalization. Matching walks the slice in
// order, so an ambiguous fragment like "Sidi" resolves deterministically to
// the first entry it matches.
var Communes = []string{
	"Anfa",
	"Sidi Belyout",
	"Maârif",
	"Roches Noires",
	"Aïn Sebaâ",
	"Aïn Chock",
	"Hay Hassani",
	"Sidi Othmane",
	"Sidi Bernoussi",
	"Ben M'Sick",
	"Moulay Rachid",
	"Bouskoura",
	"Dar Bouazza",
	"Médiouna",
}
