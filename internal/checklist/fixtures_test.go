package checklist

import "github.com/hitoshi/listman/internal/model"

// テスト用のテンプレートフィクスチャ。
func dailyRoutineTemplate() *model.ChecklistTemplate {
	return &model.ChecklistTemplate{
		ID:          "daily-routine",
		Title:       "Daily Routine",
		Icon:        "white-balance-sunny",
		ColorScheme: "sky",
		Items: []model.ChecklistTemplateItem{
			{ID: "wake-up", Text: "Wake up by 7 AM"},
			{ID: "meditation", Text: "Morning meditation"},
			{ID: "emails", Text: "Check emails"},
			{ID: "stand-up", Text: "Daily stand-up meeting"},
			{ID: "lunch", Text: "Lunch break"},
			{ID: "gym", Text: "Evening workout"},
			{ID: "plan-tom", Text: "Plan tomorrow's tasks"},
		},
	}
}

func movingHouseTemplate() *model.ChecklistTemplate {
	return &model.ChecklistTemplate{
		ID:          "moving-house",
		Title:       "Move House Checklist",
		Icon:        "home",
		ColorScheme: "mint",
		Items: []model.ChecklistTemplateItem{
			{ID: "pack-kitchen", Text: "Pack kitchen essentials"},
			{ID: "utilities", Text: "Arrange utilities transfer"},
			{ID: "address-upd", Text: "Update address"},
			{ID: "clean-old", Text: "Clean old place"},
			{ID: "deep-clean", Text: "Deep clean new place"},
			{ID: "unpack-basics", Text: "Unpack basic items"},
		},
	}
}

func eventPlanningTemplate() *model.ChecklistTemplate {
	return &model.ChecklistTemplate{
		ID:          "event-planning",
		Title:       "Event Planning",
		Icon:        "calendar",
		ColorScheme: "peach",
		Items: []model.ChecklistTemplateItem{
			{ID: "venue", Text: "Book venue"},
			{ID: "catering", Text: "Confirm catering"},
			{ID: "invitations", Text: "Send invitations"},
			{ID: "a-v", Text: "Arrange A/V setup"},
			{ID: "decor", Text: "Order decorations"},
			{ID: "follow-up", Text: "Follow up with vendors"},
		},
	}
}

// seedTemplates は同梱の全シードテンプレートを返す。
func seedTemplates() []*model.ChecklistTemplate {
	return []*model.ChecklistTemplate{
		dailyRoutineTemplate(),
		movingHouseTemplate(),
		eventPlanningTemplate(),
	}
}
