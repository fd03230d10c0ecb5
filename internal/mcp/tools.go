package mcp

import "github.com/mark3labs/mcp-go/mcp"

var classifyIntentTool = mcp.NewTool("classify_intent",
	mcp.WithDescription("Classify a farmer's question as disease, irrigation, market, scheme, weather or general."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("The farmer's question in English"),
	),
	mcp.WithBoolean("has_image",
		mcp.Description("Whether the farmer attached a crop photo"),
	),
	mcp.WithBoolean("rules_only",
		mcp.Description("Use only the keyword rules, never the language model"),
	),
)

var askAdvisorTool = mcp.NewTool("ask_advisor",
	mcp.WithDescription("Answer a registered farmer's question with the matching advisor and log the interaction."),
	mcp.WithString("uid",
		mcp.Required(),
		mcp.Description("Farmer user ID"),
	),
	mcp.WithString("query",
		mcp.Description("The question text"),
	),
	mcp.WithString("image_url",
		mcp.Description("URL of a crop photo"),
	),
)

var getRecommendationsTool = mcp.NewTool("get_recommendations",
	mcp.WithDescription("Get today's weather alerts, crop care, market and scheme tips for a farmer."),
	mcp.WithString("uid",
		mcp.Required(),
		mcp.Description("Farmer user ID"),
	),
)

var getProfileTool = mcp.NewTool("get_profile",
	mcp.WithDescription("Get a farmer's profile and the context block the advisors see."),
	mcp.WithString("uid",
		mcp.Required(),
		mcp.Description("Farmer user ID"),
	),
)
