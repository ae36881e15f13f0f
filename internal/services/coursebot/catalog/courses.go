package catalog

const defaultOutcome = "После прохождения курса вы можете сразу начать делать первые расклады"

// Default returns the production tarot course catalog.
func Default() *Registry {
	return MustNew(
		CourseOffering{
			ID:              "basic",
			Title:           "Курс «ПРОСТО О ГЛАВНОМ»",
			ButtonLabel:     "📘 ПРОСТО О ГЛАВНОМ",
			PriceOriginal:   "120",
			PriceDiscounted: "20",
			Features: []string{
				"• 5 блоков обучения по Старшим Арканам",
				"• 3 блока практики",
				"• Доступ на 90 дней",
			},
			Outcome: "После прохождения курса вы сможете сразу самостоятельно делать первые расклады",
		},
		CourseOffering{
			ID:              "basic_vip",
			Title:           "Курс «ПРОСТО О ГЛАВНОМ VIP»",
			ButtonLabel:     "📕 ПРОСТО О ГЛАВНОМ VIP",
			PriceOriginal:   "150",
			PriceDiscounted: "30",
			Features: []string{
				"• 5 блоков обучения по Старшим Арканам",
				"• 3 блока практики",
				"• 3 блока практических занятий с обратной связью",
				"• Доступ неограничен по времени",
			},
			Outcome: defaultOutcome,
		},
		CourseOffering{
			ID:              "steps",
			Title:           "Курс «ТАРО — ПЕРВЫЕ ШАГИ»",
			ButtonLabel:     "📗 ТАРО — ПЕРВЫЕ ШАГИ",
			PriceOriginal:   "200",
			PriceDiscounted: "40",
			Features: []string{
				"• 8 блоков обучения",
				"• 3 блока практики",
				"• 3 бонусных блока практики по Старшим Арканам",
				"• Доступ на 90 дней",
			},
			Outcome: defaultOutcome,
		},
		CourseOffering{
			ID:              "steps_vip",
			Title:           "Курс «ТАРО — ПЕРВЫЕ ШАГИ VIP»",
			ButtonLabel:     "📙 ТАРО — ПЕРВЫЕ ШАГИ VIP",
			PriceOriginal:   "250",
			PriceDiscounted: "50",
			Features: []string{
				"• 8 блоков обучения",
				"• 6 блоков практики",
				"• 3 практических занятия с обратной связью",
			},
			Outcome: defaultOutcome,
		},
	)
}
