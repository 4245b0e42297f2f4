package services

import (
	"log"

	"github.com/PBA-Dev/allstars-minimal/models"
)

// seedArticles are the demo records loaded into an empty store on first
// start, so the UI has something to show.
var seedArticles = []models.ArticleInput{
	{
		Title:    "Grundpflege",
		Content:  "<h2>Grundpflege - Basis der Pflegeversorgung</h2><p>Die Grundpflege umfasst alle grundlegenden pflegerischen Maßnahmen, die für die tägliche Versorgung eines Pflegebedürftigen notwendig sind.</p><h3>Wichtige Aspekte der Grundpflege:</h3><ul><li>Körperpflege</li><li>Ernährung</li><li>Mobilität</li><li>Prophylaxen</li></ul>",
		Author:   "Maria Schmidt",
		Category: "Pflege",
	},
	{
		Title:    "Dekubitusprophylaxe",
		Content:  "<h2>Dekubitusprophylaxe in der Pflege</h2><p>Die Dekubitusprophylaxe ist eine wichtige präventive Maßnahme zur Vermeidung von Druckgeschwüren.</p><h3>Kernelemente:</h3><ul><li>Regelmäßige Positionswechsel</li><li>Druckentlastung</li><li>Hautpflege</li><li>Ernährungsoptimierung</li></ul>",
		Author:   "Thomas Weber",
		Category: "Prophylaxe",
	},
	{
		Title:    "Medikamentenmanagement",
		Content:  "<h2>Sicheres Medikamentenmanagement</h2><p>Das korrekte Management von Medikamenten ist ein kritischer Aspekt der professionellen Pflege.</p><h3>Wichtige Aspekte:</h3><ul><li>Die 5 R-Regel</li><li>Dokumentation</li><li>Nebenwirkungsbeobachtung</li><li>Interaktionskontrolle</li></ul>",
		Author:   "Julia Bauer",
		Category: "Medikamente",
	},
	{
		Title:    "Hygiene in der Pflege",
		Content:  "<h2>Hygienemaßnahmen im Pflegealltag</h2><p>Hygiene ist ein zentraler Aspekt der Pflegequalität und Infektionsprävention.</p><h3>Wichtige Bereiche:</h3><ul><li>Händehygiene</li><li>Flächendesinfektion</li><li>Schutzausrüstung</li><li>Abfallmanagement</li></ul>",
		Author:   "Petra Hoffmann",
		Category: "Hygiene",
	},
}

// SeedDemoArticles creates the demo articles if the store is empty.
// Failures are logged, not fatal: a wiki without demo content still works.
func SeedDemoArticles(service ArticleService) {
	existing, err := service.ListArticles("")
	if err != nil {
		log.Printf("WARN: [Seed] Could not check for existing articles, skipping seed: %v", err)
		return
	}
	if len(existing) > 0 {
		return
	}

	created := 0
	for _, input := range seedArticles {
		if _, err := service.CreateArticle(input); err != nil {
			log.Printf("WARN: [Seed] Failed to seed article %q: %v", input.Title, err)
			continue
		}
		created++
	}
	log.Printf("INFO: [Seed] Seeded %d demo articles into the empty store.", created)
}
