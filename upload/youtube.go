// Package upload publishes finished story videos to YouTube.
package upload

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"storyreel/story"
)

// VideoMetadata describes a video being published.
type VideoMetadata struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
}

// Uploader publishes videos with a service account.
type Uploader struct {
	service *youtube.Service
}

// NewUploader authenticates against YouTube with the given service account
// JSON key file.
func NewUploader(serviceAccountFile string) (*Uploader, error) {
	ctx := context.Background()

	data, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(data, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account: %w", err)
	}

	service, err := youtube.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}

	return &Uploader{service: service}, nil
}

// UploadVideo publishes the video file and returns its YouTube ID.
func (u *Uploader) UploadVideo(videoPath string, metadata VideoMetadata) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat video file: %w", err)
	}

	log.Printf("📤 Uploading: %s (%.2f MB)", videoPath, float64(fileInfo.Size())/(1024*1024))

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       metadata.Title,
			Description: metadata.Description,
			Tags:        metadata.Tags,
			CategoryId:  metadata.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           "public",
			SelfDeclaredMadeForKids: false,
		},
	}

	call := u.service.Videos.Insert([]string{"snippet", "status"}, video).Media(file)
	response, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}

	log.Printf("✅ Uploaded! https://youtube.com/watch?v=%s", response.Id)
	return response.Id, nil
}

// titleWordLimit caps how many caption words seed the video title.
const titleWordLimit = 8

// GenerateMetadata derives publishing metadata from the story's captions.
// The title is seeded from the first translated caption; the description
// carries the full caption text with channel branding.
func GenerateMetadata(assets []story.StoryAsset, channelTitle, channelHandle string) VideoMetadata {
	title := channelTitle
	if len(assets) > 0 {
		words := strings.Fields(assets[0].TranslatedCaption)
		if len(words) > titleWordLimit {
			words = words[:titleWordLimit]
		}
		if len(words) > 0 {
			title = strings.Join(words, " ") + " | " + channelTitle
		}
	}
	if len(title) > 100 {
		title = title[:97] + "..."
	}

	var sb strings.Builder
	for _, a := range assets {
		sb.WriteString(a.TranslatedCaption)
		sb.WriteString("\n")
	}
	description := fmt.Sprintf(
		"%s\n🔔 %s\n%s\n\n#story #narration #audiobook",
		strings.TrimSpace(sb.String()),
		channelTitle,
		channelHandle,
	)

	return VideoMetadata{
		Title:       title,
		Description: description,
		Tags:        []string{"story", "narrated story", "bedtime story", "audiobook", channelTitle},
		CategoryID:  "24",
	}
}
