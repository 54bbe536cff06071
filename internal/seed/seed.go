// Package seed resets the lessons collection to a known catalogue.
package seed

import (
	"context"
	"fmt"

	"github.com/joao-fontenele/lessons-booking/internal/domain"
)

// LessonWriter is implemented by *lessons.LessonRepository.
type LessonWriter interface {
	DeleteAll(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, lessons []domain.NewLesson) (int, error)
}

// Reseed deletes every stored lesson and inserts the given list as is. It
// returns the number of lessons inserted. It is meant for bootstrapping an
// environment, not for use while the API is serving traffic.
func Reseed(ctx context.Context, store LessonWriter, lessons []domain.NewLesson) (int, error) {
	if _, err := store.DeleteAll(ctx); err != nil {
		return 0, fmt.Errorf("clear lessons: %w", err)
	}

	n, err := store.InsertMany(ctx, lessons)
	if err != nil {
		return 0, fmt.Errorf("insert lessons: %w", err)
	}
	return n, nil
}

// Lessons is the catalogue the seed command installs.
var Lessons = []domain.NewLesson{
	{Subject: "Mathematics", Location: "Hendon", Price: 100, Spaces: 5, Description: "Fractions, algebra and problem solving for years 5 to 8.", Image: "images/maths.png"},
	{Subject: "English", Location: "Colindale", Price: 90, Spaces: 5, Description: "Reading comprehension, grammar and essay practice.", Image: "images/english.png"},
	{Subject: "Music", Location: "Brent Cross", Price: 80, Spaces: 5, Description: "Piano and keyboard lessons for beginners.", Image: "images/music.png"},
	{Subject: "Art", Location: "Golders Green", Price: 70, Spaces: 5, Description: "Drawing, painting and collage with a different theme each week.", Image: "images/art.png"},
	{Subject: "Biology Lab", Location: "Mill Hill", Price: 110, Spaces: 5, Description: "Microscopes, cells and hands-on experiments with living things.", Image: "images/biology.png"},
	{Subject: "Chemistry", Location: "Edgware", Price: 110, Spaces: 5, Description: "Safe kitchen experiments with acids, bases and reactions.", Image: "images/chemistry.png"},
	{Subject: "Physics", Location: "Finchley", Price: 105, Spaces: 5, Description: "Forces, circuits and simple machines.", Image: "images/physics.png"},
	{Subject: "Coding Club", Location: "Hendon", Price: 120, Spaces: 5, Description: "Build games and animations with Scratch and Python.", Image: "images/coding.png"},
	{Subject: "Chess", Location: "Colindale", Price: 60, Spaces: 5, Description: "Openings, tactics and friendly tournaments.", Image: "images/chess.png"},
	{Subject: "Drama", Location: "Brent Cross", Price: 75, Spaces: 5, Description: "Improvisation, voice work and an end of term show.", Image: "images/drama.png"},
	{Subject: "French", Location: "Golders Green", Price: 85, Spaces: 5, Description: "Conversation, songs and vocabulary games.", Image: "images/french.png"},
	{Subject: "Football", Location: "Mill Hill", Price: 65, Spaces: 5, Description: "Ball skills, teamwork and small sided matches.", Image: "images/football.png"},
	{Subject: "Creative Writing", Location: "Finchley", Price: 95, Spaces: 5, Description: "Short stories, poetry and planning longer pieces.", Image: "images/writing.png"},
}
