package studio

// Option 一个可选项：取值、展示名，以及（仅画风）附加到提示词里的描述
type Option struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Prompt string `json:"prompt,omitempty"`
}

// Catalog 有序的可选项列表
type Catalog []Option

// Values 所有取值，用于 MCP 工具的枚举
func (c Catalog) Values() []string {
	out := make([]string, len(c))
	for i, o := range c {
		out[i] = o.Value
	}
	return out
}

// Find 按取值查找
func (c Catalog) Find(value string) (Option, bool) {
	for _, o := range c {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

// StyleLibrary 视觉提示词的画风
var StyleLibrary = Catalog{
	{Value: "cinematic", Label: "🎬 Cinematic (Điện ảnh)", Prompt: "Photorealistic, 8k, cinematic lighting, shot on Arri Alexa, movie aesthetic."},
	{Value: "3d_animation", Label: "🧸 Hoạt hình 3D (Pixar)", Prompt: "3D Animation style, Pixar/Disney inspired, vivid colors, octane render."},
	{Value: "2d_animation", Label: "🎨 Hoạt hình 2D", Prompt: "Traditional 2D animation, Studio Ghibli aesthetic, fluid movement."},
	{Value: "anime", Label: "🌸 Anime (Nhật Bản)", Prompt: "Japanese Anime style, cel shading, Makoto Shinkai inspired lighting."},
	{Value: "cyberpunk", Label: "🌃 Cyberpunk (Sci-Fi)", Prompt: "Neon lights, futuristic city, high tech low life, purple and blue palette."},
	{Value: "horror", Label: "👻 Horror (Kinh dị)", Prompt: "Dark and moody, low key lighting, ominous shadows, unsettling atmosphere."},
	{Value: "watercolor", Label: "🖌️ Watercolor (Màu nước)", Prompt: "Watercolor painting style, artistic, soft edges, dreamy atmosphere."},
	{Value: "scifi_space", Label: "🚀 Space (Vũ trụ)", Prompt: "High-tech Sci-Fi, interstellar aesthetic, futuristic interfaces."},
	{Value: "travel_vlog", Label: "📷 Travel Vlog", Prompt: "GoPro Hero 11 style, wide angle, POV shot, vibrant saturation."},
	{Value: "isometric", Label: "🎲 Isometric (3D Game)", Prompt: "Isometric view, miniature world, tilt-shift effect, diorama aesthetic."},
}

// TimelapseStyles 延时摄影风格
var TimelapseStyles = Catalog{
	{Value: "urban_pulse", Label: "🏙️ Urban Pulse (Nhịp sống đô thị)"},
	{Value: "nature_bloom", Label: "🌸 Nature Bloom (Hoa nở/Cây lớn)"},
	{Value: "celestial_motion", Label: "🌌 Celestial (Sao chạy/Thiên văn)"},
	{Value: "construction_build", Label: "🏗️ Construction (Xây dựng/Kiến trúc)"},
	{Value: "weather_cycle", Label: "🌦️ Weather Cycle (Bão/Mây trôi)"},
	{Value: "seasonal_shift", Label: "🍂 Seasonal (Bốn mùa thay đổi)"},
	{Value: "macro_growth", Label: "🔬 Macro Growth (Vi mô/Tế bào)"},
	{Value: "light_trails", Label: "⚡ Light Trails (Vệt sáng đêm)"},
	{Value: "human_evolution", Label: "👤 Evolution (Người già đi/Thay đổi)"},
	{Value: "vintage_decay", Label: "🏚️ Vintage Decay (Sự tàn phai/Rỉ sét)"},
}

// ThumbnailStyles 缩略图风格，取值直接写入提示词
var ThumbnailStyles = Catalog{
	{Value: "Hyper-realistic", Label: "📸 Siêu thực (Real Photo)"},
	{Value: "3D Pixar", Label: "🧊 3D Render (Pixar/Disney)"},
	{Value: "Cyberpunk Glow", Label: "🌃 Cyberpunk Neon"},
	{Value: "Epic Fantasy", Label: "🐉 Fantasy (Kỳ ảo)"},
	{Value: "Grand Theft Auto", Label: "🎮 GTA Art Style"},
	{Value: "Anime Viral", Label: "🌸 Anime Viral"},
	{Value: "Oil Painting", Label: "🖌️ Sơn dầu nghệ thuật"},
	{Value: "Minimalist Modern", Label: "⚪ Tối giản hiện đại"},
	{Value: "Comic Pop Art", Label: "💥 Pop Art / Comic"},
	{Value: "Dark Cinematic", Label: "📽️ Dark Cinema"},
}

// CameraMovements 镜头运动
var CameraMovements = Catalog{
	{Value: "static", Label: "🎥 Static (Cố định)"},
	{Value: "pan", Label: "↔️ Pan (Quay ngang)"},
	{Value: "tilt", Label: "↕️ Tilt (Quay dọc)"},
	{Value: "zoom", Label: "🔍 Zoom (Phóng/Thu)"},
	{Value: "dolly", Label: "🚋 Dolly (Di chuyển)"},
	{Value: "orbit", Label: "🔄 Orbit (Quay vòng)"},
}

// LightingModes 光照
var LightingModes = Catalog{
	{Value: "natural", Label: "☀️ Natural (Tự nhiên)"},
	{Value: "cinematic", Label: "🎬 Cinematic (Điện ảnh)"},
	{Value: "neon", Label: "🌃 Neon (Đèn Neon)"},
	{Value: "golden_hour", Label: "🌅 Golden Hour (Giờ vàng)"},
	{Value: "studio", Label: "📸 Studio (Phòng studio)"},
	{Value: "dramatic", Label: "🕯️ Dramatic (Kịch tính)"},
}

// SEOStyles SEO 文案风格
var SEOStyles = Catalog{
	{Value: "clickbait", Label: "🔥 Clickbait (Gây sốc)"},
	{Value: "professional", Label: "👔 Chuyên gia (Uy tín)"},
	{Value: "storytelling", Label: "📖 Kể chuyện (Cuốn hút)"},
	{Value: "minimalist", Label: "⚪ Tối giản (Súc tích)"},
}

// ScriptFormats 剧本体裁
var ScriptFormats = Catalog{
	{Value: "vlog", Label: "🤳 Vlog POV"},
	{Value: "documentary", Label: "🏛️ Tài liệu"},
	{Value: "movie", Label: "🎬 Phim ngắn"},
	{Value: "review", Label: "📦 Review sản phẩm"},
}

// ScriptLengths 剧本长度
var ScriptLengths = Catalog{
	{Value: "short", Label: "Short"},
	{Value: "standard", Label: "Standard"},
	{Value: "long", Label: "Long"},
}

// FocusModes 对焦
var FocusModes = Catalog{
	{Value: "deep", Label: "🖼️ Deep Focus (Rõ nét toàn bộ)"},
	{Value: "bokeh", Label: "✨ Bokeh (Xóa phông mạnh)"},
	{Value: "macro", Label: "🔍 Macro (Siêu cận cảnh)"},
	{Value: "tilt-shift", Label: "🏙️ Tilt-shift (Mô hình nhỏ)"},
}

// ColorGrades 调色
var ColorGrades = Catalog{
	{Value: "standard", Label: "🌈 Chuẩn"},
	{Value: "teal-orange", Label: "🍊 Teal & Orange"},
	{Value: "vintage", Label: "🎞️ Vintage (Cổ điển)"},
	{Value: "bw", Label: "🌑 Trắng đen"},
	{Value: "vibrant", Label: "⚡ Rực rỡ"},
}

// VoiceTypes 旁白声音，off 表示无对白
var VoiceTypes = Catalog{
	{Value: "off", Label: "Off"},
	{Value: "Child", Label: "Child"},
	{Value: "Female", Label: "Female"},
	{Value: "Male", Label: "Male"},
	{Value: "Old", Label: "Old"},
	{Value: "Mixed", Label: "Mixed"},
}

// ImageQualities 图片尺寸
var ImageQualities = Catalog{
	{Value: "1K", Label: "1K"},
	{Value: "2K", Label: "2K"},
	{Value: "4K", Label: "4K"},
}
