package model

import "time"

// サイト設定は常に1行
const SiteSettingsID int64 = 1

type SiteSettings struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	ShopName        string    `gorm:"type:varchar(200);not null" json:"shop_name"`
	HeroTitle       string    `gorm:"type:varchar(300)" json:"hero_title"`
	HeroSubtitle    string    `gorm:"type:text" json:"hero_subtitle"`
	HeroImage       string    `gorm:"type:varchar(500)" json:"hero_image"`
	StoryTitle      string    `gorm:"type:varchar(300)" json:"story_title"`
	StoryContent    string    `gorm:"type:text" json:"story_content"`
	StoryImage      string    `gorm:"type:varchar(500)" json:"story_image"`
	NewsletterTitle string    `gorm:"type:varchar(300)" json:"newsletter_title"`
	NewsletterText  string    `gorm:"type:text" json:"newsletter_text"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 起動時に投入する初期値
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		ID:              SiteSettingsID,
		ShopName:        "Maison Parfum",
		HeroTitle:       "Artisan Fragrances",
		HeroSubtitle:    "Small-batch perfumes blended by hand.",
		StoryTitle:      "Our Story",
		StoryContent:    "Every bottle starts with a single note and a long walk.",
		NewsletterTitle: "Stay in touch",
		NewsletterText:  "New scents and restocks, once a month.",
	}
}
