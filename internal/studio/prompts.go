package studio

import (
	"fmt"
	"strings"
)

func visualPrompt(r VisualRequest, stylePrompt string) string {
	consistency := "Fluid, natural cinematic movement."
	if r.Consistency == "fixed" {
		consistency = "Strictly frozen pose, no movement of anchor."
	}
	dialogue := "STRICT SILENCE. Prepend [Silent Scene]."
	if r.VoiceType != "off" {
		dialogue = fmt.Sprintf("Provide VIETNAMESE DIALOGUE inside quotes for %s.", r.VoiceType)
	}

	var b strings.Builder
	b.WriteString("Act as Master Video Prompt Engineer for Google Veo, Runway Gen-3, and Luma Dream Machine.\n")
	fmt.Fprintf(&b, "IDEA: %q\n", r.Idea)
	fmt.Fprintf(&b, "VISUAL ANCHOR: %q (MUST BE MAINTAINED IN EVERY SCENE)\n", r.VisualAnchor)
	fmt.Fprintf(&b, "BACKGROUND LOCK: %q (CONSISTENT ENVIRONMENT)\n", r.BackgroundAnchor)
	fmt.Fprintf(&b, "STYLE: %q\n", stylePrompt)
	fmt.Fprintf(&b, "OUTPUT LANGUAGE: %s\n\n", r.OutputLanguage)
	b.WriteString("STRICT RULES OF THE MASTER:\n")
	b.WriteString("1. Every scene MUST strictly begin with a detailed description of the Visual Anchor.\n")
	b.WriteString("2. Every scene MUST strictly end with the Background Lock description.\n")
	fmt.Fprintf(&b, "3. Use technical camera terms: %s, Focus: %s, Lighting: %s, Color: %s.\n", r.Camera, r.Focus, r.Lighting, r.ColorGrade)
	fmt.Fprintf(&b, "4. CHARACTER CONSISTENCY: %s\n", consistency)
	fmt.Fprintf(&b, "5. DIALOGUE LOGIC: %s\n\n", dialogue)
	b.WriteString("OUTPUT FORMAT (Scene [N] | Visual | Style | Voices | Shot | Setting | Mood | Audio | Dialog):\n")
	fmt.Fprintf(&b, "Scene [N] | [Detailed Visual Description in %s] | [Technical Style] | [Voice Type] | [Camera Shot] | [Setting] | [Mood] | [SFX/BGM] | [Dialog Content]\n\n", r.OutputLanguage)
	fmt.Fprintf(&b, "GENERATE EXACTLY %d SCENES.", r.Count)
	return b.String()
}

func scriptPrompt(r ScriptRequest) string {
	return fmt.Sprintf(`Act as an Award-Winning Cinematic Screenwriter.
TOPIC: %q
TONE: %s
LENGTH: %s
FORMAT: %s
LANGUAGE: %s

You MUST provide a structured response that allows for Visual Prompt generation.
JSON STRUCTURE:
{
  "character": "Extremely detailed visual description of the main character (Visual Anchor)",
  "background": "Extremely detailed description of the master environment (Background Lock)",
  "script": "Full cinematic script with scene headings, character actions, and dialogue."
}`, r.Topic, r.Tone, r.Length, r.Format, r.Language)
}

func thumbnailPrompt(r ThumbnailRequest) string {
	return fmt.Sprintf(`Act as a Viral Thumbnail Designer & Prompt Engineer.
Create 3 DISTINCT ULTIMATE PROMPTS for YouTube Thumbnails.
Context: %q
Subject (Anchor): %q
Style: %q

Prompts must be optimized for Midjourney v6/DALL-E 3 with keywords for lighting, texture, and composition.
OUTPUT JSON ARRAY: [ {"id": "1", "prompt": "..."}, {"id": "2", "prompt": "..."}, {"id": "3", "prompt": "..."} ]`,
		r.Context, r.Anchor, r.Style)
}

func seoPrompt(r SEORequest) string {
	return fmt.Sprintf(`Act as YouTube SEO Growth Expert.
TOPIC: %q
CHANNEL: %q
STYLE: %s
LANGUAGE: %s

Create a high-conversion Metadata package.
JSON FORMAT: { "title": "...", "description": "...", "hashtags": "..." }`, r.Topic, r.Channel, r.Style, r.Language)
}

func timelapsePrompt(r TimelapseRequest, styleLabel string) string {
	var details string
	switch r.Mode {
	case TimelapseManual:
		details = fmt.Sprintf("Evolution from %s to %s.", r.From, r.To)
	case TimelapseBatch:
		details = fmt.Sprintf("Phases: 0%%=%s, 30%%=%s, 50%%=%s, 70%%=%s, 100%%=%s.",
			r.Phases.P0, r.Phases.P30, r.Phases.P50, r.Phases.P70, r.Phases.P100)
	default:
		details = "Analyze the provided image frames to generate a consistent evolution prompt."
	}
	return fmt.Sprintf("Create a master timelapse prompt for: %s. Style: %s. Details: %s", r.Character, styleLabel, details)
}

func spyPrompt(r SpyRequest) string {
	return fmt.Sprintf(`Analyze this competitor content: %q.
Deconstruct the hooks, keywords, and AI prompts.
JSON: { "title": "...", "description": "...", "prompts": "...", "script": "..." }`, r.Input)
}
