package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/ogenlabs/hipus"
	"github.com/ogenlabs/hipus/core"
	"github.com/ogenlabs/hipus/ingestion"
)

var sentences = []string{
	"בדיקה תקופתית של מערכת החשמל בקומה השנייה הושלמה ללא ליקויים.",
	"נמצא ליקוי חמור בצנרת המים הראשית בחניון התחתון.",
	"לוח החשמל בארון התקשורת דורש החלפה דחופה.",
	"המעלית בבניין המזרחי חזרה לפעולה מלאה לאחר תיקון המנוע.",
	"גלאי העשן במסדרון הקומה הרביעית אינו מגיב לבדיקה.",
	"מערכת המתזים בחדר השרתים נבדקה ונמצאה תקינה.",
	"דלת החירום ביציאה הדרומית אינה נסגרת כראוי.",
	"תאורת החירום בחדר המדרגות הוחלפה בגופי תאורה חדשים.",
	"נדרש איטום מחדש של הגג מעל אגף המעבדות.",
	"בדיקת לחץ המים בקומות העליונות העלתה ירידה משמעותית.",
	"מערכת מיזוג האוויר באולם הישיבות פועלת ברעש חריג.",
	"הוחלף מסנן האוויר ביחידת הטיפול המרכזית.",
	"נמצאה רטיבות בקיר המערבי של המחסן התחתון.",
	"עמדת כיבוי האש ליד הכניסה הראשית חסרה זרנוק.",
	"בוצע כיול שנתי לרגשי הטמפרטורה בחדר הקירור.",
	"שער החניון נפתח באיטיות ודורש שימון מסילות.",
	"בדיקת הארקה בלוח הראשי הסתיימה בהצלחה.",
	"הותקנה מערכת בקרת כניסה חדשה בקומת הקרקע.",
	"צנרת הניקוז בחצר האחורית נסתמה ונוקתה ביסודיות.",
	"מד המים הראשי הוחלף לאחר שנמצא בלתי מדויק.",
	"נצפתה קורוזיה מתקדמת בצנרת הפלדה שבחדר ההסקה.",
	"מערכת האזעקה נבדקה בכל הקומות ונמצאה תקינה.",
	"חלון המקלט בקומה השלישית אינו נאטם כנדרש.",
	"הוגשה הזמנה לרכישת משאבת מים חלופית.",
	"בדיקת תקינות המעקות במרפסות הסתיימה ללא הערות.",
	"נמצא נזק לריצוף בכניסה לאגף הצפוני.",
	"מערכת ההשקיה בגינה פועלת בשעות לא מתוכננות.",
	"הוחלפו צירי הדלת בכניסה למחסן הכימיקלים.",
	"תעלת המיזוג מעל המטבחון דורשת ניקוי יסודי.",
	"בוצעה הדברה תקופתית בכל שטחי האחסון.",
	"גנרטור החירום הופעל לניסיון ועבד כשעה ברציפות.",
	"לחץ הגז במערכת ההסקה המרכזית נמוך מהתקן.",
	"הותקנו פסי האטה חדשים בכביש הגישה לחניון.",
	"נבדקו כל המטפים בבניין והוחלפו שלושה שפג תוקפם.",
	"איתור נזילה בקומת המרתף נמשך יומיים ברציפות.",
	"הוחלף בלון הגז בעמדת הריתוך שבסדנה.",
	"מערכת החשמל במעבדת הכימיה שודרגה לשלוש פאזות.",
	"נמצאו סדקים נימיים בקורת הבטון שבחניון.",
	"תוקנה תקלת תקשורת בין בקר המעלית למוקד השירות.",
	"בדיקת איכות המים בברזיות העלתה ערכים תקינים.",
	"שוחזר קו החשמל לתאורת החצר לאחר פגיעת ברק.",
	"נוקו תעלות הניקוז על הגג לקראת עונת הגשמים.",
	"הוחלפה משאבת הסחרור במערכת המים החמים.",
	"בקרת האקלים בארכיון כוילה מחדש לרמת לחות נמוכה.",
	"סומנו מחדש נתיבי המילוט בכל קומות הבניין.",
	"הותקן מונה חשמל נפרד לאגף ההשכרה החדש.",
	"נבדק עומס החשמל בלוח הקומתי בשעות השיא.",
	"תוקן פתח האוורור בחדר הגנרטור.",
	"הוזמן צוות מיוחד לטיפול בנזקי הרטיבות בספרייה.",
	"עודכן יומן התחזוקה לאחר סיום עבודות הצביעה.",
	"נערך סיור בטיחות מקיף עם נציגי חברת הביטוח.",
	"הוגדרה תוכנית תחזוקה מונעת למערכות הקירור.",
	"הוחלפו כל נורות הלד בתאורת חדר המדרגות.",
	"נמדדה רמת הרעש של יחידת המיזוג על הגג.",
	"אושרה הצעת מחיר לשיפוץ חדר האשפה המרכזי.",
	"הושלמה העברת הארכיון לחדר עם בקרת אקלים.",
}

var (
	seedFileName = flag.String("src", "", "file of seed data, one document per line")
	dbPath       = flag.String("db", "./hipus_db", "path to the search store directory")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// ingestBatched reads from a source iterator and indexes documents in
// batches. Blank lines are skipped so file sources may contain them.
func ingestBatched(ctx context.Context, engine *hipus.Engine, source iter.Seq[string], batchSize int) (int, error) {
	batch := make([]ingestion.Document, 0, batchSize)
	total := 0
	seq := 0

	for line := range source {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		seq++
		batch = append(batch, ingestion.Document{
			Id:       core.DocID(fmt.Sprintf("seed-%04d", seq)),
			Text:     line,
			Metadata: map[string]string{"source": "seeder"},
		})
		if len(batch) == batchSize {
			n, err := engine.IndexDocuments(ctx, batch...)
			total += n
			if err != nil {
				return total, err
			}
			batch = batch[:0]
		}
	}

	// Process any remaining lines
	if len(batch) > 0 {
		n, err := engine.IndexDocuments(ctx, batch...)
		total += n
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

func main() {
	ctx := context.Background()

	engine, err := hipus.Open(ctx, *dbPath)
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	// Determine source of seed data
	var source iter.Seq[string]
	if seedFileName != nil && *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(sentences)
	}

	// Ingest in batches of 8
	total, err := ingestBatched(ctx, engine, source, 8)
	if err != nil {
		panic(err)
	}
	slog.Info("seeding complete", "documents", total)
}
