package seed

var firstNames = []string{
	"Anna", "Ben", "Clara", "David", "Emma", "Felix", "Greta", "Hannah", "Jonas", "Katharina",
	"Lukas", "Marie", "Noah", "Paula", "Jürgen", "Sophie", "Tim", "Ülkü", "Yusuf", "Zoë",
}

var lastNames = []string{
	"Müller", "Schmidt", "Schneider", "Fischer", "Weber", "Meyer", "Wagner", "Becker",
	"Schulz", "Hoffmann", "Koch", "Richter", "Klein", "Wolf", "Schröder", "Neumann",
}

var positions = []string{
	"Projektleitung", "Geschäftsführung", "Ehrenamtliche Mitarbeit", "Referentin",
	"Koordination", "Öffentlichkeitsarbeit", "Vorstand",
}

var bios = []string{
	"Engagiert für lebendige Nachbarschaften.",
	"Bildung, Kultur und Begegnung vor Ort.",
	"Wir vernetzen Menschen, die etwas bewegen wollen.",
	"Nachhaltigkeit beginnt im Kleinen.",
	"Gemeinsam mehr erreichen.",
}

var cities = []string{
	"Berlin", "Hamburg", "München", "Köln", "Leipzig", "Dresden", "Freiburg", "Münster",
	"Kassel", "Rostock", "Görlitz", "Tübingen",
}

var orgPrefixes = []string{
	"Bürgerstiftung", "Netzwerk Ehrenamt", "Verein Grüner Weg", "Initiative Zukunft",
	"Kulturzentrum", "Nachbarschaftshilfe",
}

var eventKinds = []string{
	"Sommerfest", "Netzwerktreffen", "Workshop Fördermittel", "Barcamp", "Lesung", "Stammtisch",
}

var projectKinds = []string{
	"Lernpatenschaften", "Repair-Café", "Gemeinschaftsgarten", "Sprachcafé", "Stadtteilzeitung",
}
