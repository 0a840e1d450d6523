package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/memequiz-backend/internal/domain"
)

func SeedGeneration(tb testing.TB, ctx context.Context, tx *gorm.DB, userID *uuid.UUID, questions int) *types.MCQGeneration {
	tb.Helper()
	g := &types.MCQGeneration{
		UserID:       userID,
		InputType:    "paste_text",
		ContentType:  "coding",
		Difficulty:   "auto",
		NumQuestions: questions,
		ModelName:    "llama-3.3-70b-versatile",
	}
	for i := 0; i < questions; i++ {
		g.Questions = append(g.Questions, types.MCQQuestion{
			Number:        i + 1,
			Text:          fmt.Sprintf("question %d", i+1),
			OptionA:       "a",
			OptionB:       "b",
			OptionC:       "c",
			OptionD:       "d",
			CorrectAnswer: "A",
		})
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed generation: %v", err)
	}
	return g
}

func SeedMemeGeneration(tb testing.TB, ctx context.Context, tx *gorm.DB, userID *uuid.UUID) *types.MemeGeneration {
	tb.Helper()
	g := &types.MemeGeneration{
		UserID:                userID,
		InputType:             "topic",
		Topic:                 "recursion",
		MemeType:              "gif",
		NumMemes:              1,
		TotalGenerated:        1,
		SuccessfulGenerations: 1,
		Memes:                 []types.GeneratedMeme{{URL: "https://media.tenor.com/x.gif", MemeType: "gif", Source: "tenor"}},
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed meme generation: %v", err)
	}
	return g
}
