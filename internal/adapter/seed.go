package adapter

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"bookify/internal/core"
	"bookify/internal/core/model"
)

// LoadBooksFromJSON reads a catalog file (a JSON array of books) so deployments
// can ship their own catalog instead of the built-in one.
func LoadBooksFromJSON(path string) ([]model.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var books []model.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	for i := range books {
		// a zero page count would poison every percentage computed from it
		if books[i].Pages < 1 {
			return nil, fmt.Errorf("catalog %s: book %q needs pages >= 1", path, books[i].ID)
		}
		if books[i].Content == "" && books[i].Preview != "" {
			books[i].Content = expandPreview(books[i].Preview, 6)
		}
	}
	return books, nil
}

// SeedBooks is the built-in demo catalog used when no catalog file is given.
func SeedBooks() []model.Book {
	books := []model.Book{
		{
			ID: "1", Title: "To Kill a Mockingbird", Author: "Harper Lee",
			Description: "A young girl's view of racial injustice in the Depression-era South.",
			CoverImage:  "/covers/to-kill-a-mockingbird.jpg",
			Genres:      []string{"Classic", "Fiction"}, Language: "English",
			PublishedYear: 1960, Pages: 281, Rating: 4.8, TotalReviews: 2847,
			ISBN: "9780061120084", Publisher: "J. B. Lippincott & Co.",
			Preview:  "When he was nearly thirteen, my brother Jem got his arm badly broken at the elbow.",
			Featured: true, Tags: []string{"justice", "coming-of-age"},
		},
		{
			ID: "2", Title: "1984", Author: "George Orwell",
			Description: "A dystopian vision of total surveillance and the destruction of truth.",
			CoverImage:  "/covers/1984.jpg",
			Genres:      []string{"Dystopian", "Science Fiction"}, Language: "English",
			PublishedYear: 1949, Pages: 328, Rating: 4.7, TotalReviews: 3412,
			ISBN: "9780451524935", Publisher: "Secker & Warburg",
			Preview:  "It was a bright cold day in April, and the clocks were striking thirteen.",
			Featured: true, Tags: []string{"surveillance", "totalitarianism"},
		},
		{
			ID: "3", Title: "Pride and Prejudice", Author: "Jane Austen",
			Description: "Elizabeth Bennet navigates manners, marriage and Mr. Darcy.",
			CoverImage:  "/covers/pride-and-prejudice.jpg",
			Genres:      []string{"Classic", "Romance"}, Language: "English",
			PublishedYear: 1813, Pages: 432, Rating: 4.6, TotalReviews: 2156,
			ISBN: "9780141439518", Publisher: "T. Egerton",
			Preview: "It is a truth universally acknowledged, that a single man in possession of a good fortune, must be in want of a wife.",
			Tags:    []string{"romance", "society"},
		},
		{
			ID: "4", Title: "The Great Gatsby", Author: "F. Scott Fitzgerald",
			Description: "Jazz Age glamour and the hollow heart of the American dream.",
			CoverImage:  "/covers/the-great-gatsby.jpg",
			Genres:      []string{"Classic", "Fiction"}, Language: "English",
			PublishedYear: 1925, Pages: 180, Rating: 4.4, TotalReviews: 1893,
			ISBN: "9780743273565", Publisher: "Charles Scribner's Sons",
			Preview: "In my younger and more vulnerable years my father gave me some advice that I've been turning over in my mind ever since.",
			Tags:    []string{"american-dream", "jazz-age"},
		},
		{
			ID: "5", Title: "Dune", Author: "Frank Herbert",
			Description: "Politics, religion and ecology collide on the desert planet Arrakis.",
			CoverImage:  "/covers/dune.jpg",
			Genres:      []string{"Science Fiction", "Adventure"}, Language: "English",
			PublishedYear: 1965, Pages: 688, Rating: 4.7, TotalReviews: 2940,
			ISBN: "9780441172719", Publisher: "Chilton Books",
			Preview:  "In the week before their departure to Arrakis, when all the final scurrying about had reached a nearly unbearable frenzy, an old crone came to visit the mother of the boy, Paul.",
			Featured: true, Tags: []string{"space-opera", "ecology"},
		},
		{
			ID: "6", Title: "Harry Potter and the Philosopher's Stone", Author: "J.K. Rowling",
			Description: "An orphaned boy discovers he is a wizard and enters a hidden magical world.",
			CoverImage:  "/covers/philosophers-stone.jpg",
			Genres:      []string{"Fantasy", "Young Adult"}, Language: "English",
			PublishedYear: 1997, Pages: 223, Rating: 4.8, TotalReviews: 4521,
			ISBN: "9780747532699", Publisher: "Bloomsbury",
			Preview:  "Mr. and Mrs. Dursley, of number four, Privet Drive, were proud to say that they were perfectly normal, thank you very much.",
			Featured: true, Tags: []string{"magic", "school"},
		},
		{
			ID: "7", Title: "The Lord of the Rings", Author: "J.R.R. Tolkien",
			Description: "The epic quest to destroy the One Ring and save Middle-earth.",
			CoverImage:  "/covers/lord-of-the-rings.jpg",
			Genres:      []string{"Fantasy", "Adventure"}, Language: "English",
			PublishedYear: 1954, Pages: 1178, Rating: 4.9, TotalReviews: 5102,
			ISBN: "9780618640157", Publisher: "Allen & Unwin",
			Preview: "When Mr. Bilbo Baggins of Bag End announced that he would shortly be celebrating his eleventy-first birthday with a party of special magnificence, there was much talk and excitement in Hobbiton.",
			Tags:    []string{"epic", "quest"},
		},
		{
			ID: "8", Title: "The Hobbit", Author: "J.R.R. Tolkien",
			Description: "Bilbo Baggins is swept into an unexpected journey to the Lonely Mountain.",
			CoverImage:  "/covers/the-hobbit.jpg",
			Genres:      []string{"Fantasy", "Adventure"}, Language: "English",
			PublishedYear: 1937, Pages: 310, Rating: 4.7, TotalReviews: 3876,
			ISBN: "9780547928227", Publisher: "Allen & Unwin",
			Preview: "In a hole in the ground there lived a hobbit.",
			Tags:    []string{"adventure", "dragons"},
		},
		{
			ID: "9", Title: "The Handmaid's Tale", Author: "Margaret Atwood",
			Description: "A woman's survival inside the theocratic Republic of Gilead.",
			CoverImage:  "/covers/handmaids-tale.jpg",
			Genres:      []string{"Dystopian", "Science Fiction"}, Language: "English",
			PublishedYear: 1985, Pages: 311, Rating: 4.5, TotalReviews: 1764,
			ISBN: "9780385490818", Publisher: "McClelland & Stewart",
			Preview: "We slept in what had once been the gymnasium.",
			Tags:    []string{"dystopia", "feminism"},
		},
		{
			ID: "10", Title: "The Catcher in the Rye", Author: "J.D. Salinger",
			Description: "Holden Caulfield drifts through New York, allergic to phonies.",
			CoverImage:  "/covers/catcher-in-the-rye.jpg",
			Genres:      []string{"Classic", "Fiction"}, Language: "English",
			PublishedYear: 1951, Pages: 277, Rating: 4.1, TotalReviews: 1532,
			ISBN: "9780316769488", Publisher: "Little, Brown and Company",
			Preview: "If you really want to hear about it, the first thing you'll probably want to know is where I was born.",
			Tags:    []string{"coming-of-age"},
		},
		{
			ID: "11", Title: "Brave New World", Author: "Aldous Huxley",
			Description: "A genetically engineered utopia where comfort replaces freedom.",
			CoverImage:  "/covers/brave-new-world.jpg",
			Genres:      []string{"Dystopian", "Science Fiction"}, Language: "English",
			PublishedYear: 1932, Pages: 311, Rating: 4.3, TotalReviews: 1678,
			ISBN: "9780060850524", Publisher: "Chatto & Windus",
			Preview: "A squat grey building of only thirty-four stories.",
			Tags:    []string{"dystopia", "technology"},
		},
		{
			ID: "12", Title: "The Alchemist", Author: "Paulo Coelho",
			Description: "A shepherd boy follows omens across the desert toward his personal legend.",
			CoverImage:  "/covers/the-alchemist.jpg",
			Genres:      []string{"Fiction", "Philosophy"}, Language: "Portuguese",
			PublishedYear: 1988, Pages: 208, Rating: 4.2, TotalReviews: 2310,
			ISBN: "9780062315007", Publisher: "HarperOne",
			Preview: "The boy's name was Santiago.",
			Tags:    []string{"journey", "destiny"},
		},
		{
			ID: "13", Title: "Sapiens: A Brief History of Humankind", Author: "Yuval Noah Harari",
			Description: "How an unremarkable ape came to rule the planet.",
			CoverImage:  "/covers/sapiens.jpg",
			Genres:      []string{"Non-fiction", "History"}, Language: "English",
			PublishedYear: 2011, Pages: 443, Rating: 4.6, TotalReviews: 2987,
			ISBN: "9780062316097", Publisher: "Harvill Secker",
			Preview: "About 13.5 billion years ago, matter, energy, time and space came into being in what is known as the Big Bang.",
			Tags:    []string{"history", "anthropology"},
		},
		{
			ID: "14", Title: "The Midnight Library", Author: "Matt Haig",
			Description: "Between life and death sits a library of all the lives you could have lived.",
			CoverImage:  "/covers/midnight-library.jpg",
			Genres:      []string{"Fiction", "Contemporary"}, Language: "English",
			PublishedYear: 2020, Pages: 288, Rating: 4.2, TotalReviews: 1845,
			ISBN: "9780525559474", Publisher: "Canongate Books",
			Preview: "Nineteen years before she decided to die, Nora Seed sat in the warmth of the small library at Hazeldene School.",
			Tags:    []string{"parallel-lives", "hope"},
		},
	}

	for i := range books {
		books[i].Content = expandPreview(books[i].Preview, 6)
	}
	return books
}

// expandPreview pads the preview into multi-page demo content. Real book text
// is not bundled with the repo; the reader only needs something to paginate.
func expandPreview(preview string, pages int) string {
	var sb strings.Builder
	for sb.Len() < pages*core.DefaultPageSize {
		sb.WriteString(preview)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
