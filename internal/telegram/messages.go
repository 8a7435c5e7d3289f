package telegram

import "fmt"

// User-facing strings stay in Uzbek, the language the school operates in.

const welcomeMessage = `👋 Assalomu alaykum! Davomat botiga xush kelibsiz!

📋 Bot haqida:
Bu bot maktab davomatini avtomatik ravishda yig'ish va hisoblash uchun yaratilgan.

📝 Davomat yuborish formati:
<Sinf nomi> <jami o'quvchilar soni>/<kelganlar soni>
<O'quvchi 1>
<O'quvchi 2>
...

Misol:
6A 21/18

Abubakr Valijanov
Alisher Oripov
Bekzod Qodirov

✅ Kechikkan o'quvchilar uchun:
<Sinf> <Ism> keldi  - o'quvchi keldi
<Sinf> <Ism> ketdi  - o'quvchi ketdi

Misol: 9A Bobur keldi`

const (
	errorMessage         = "Xatolik yuz berdi. Iltimos, qayta urinib ko'ring."
	notAuthorizedMessage = "Sizda bu buyruq uchun ruxsat yo'q."
	ownerOnlyMessage     = "Bu buyruq faqat bot egasi uchun."

	accessRequestedMessage   = "✅ So'rovingiz yuborildi. Tasdiqlashni kuting."
	accessPendingMessage     = "So'rovingiz allaqachon ko'rib chiqilmoqda."
	accessAlreadyMessage     = "Sizga allaqachon ruxsat berilgan."
	accessApprovedMessage    = "✅ Sizga ruxsat berildi! Endi kunlik hisobotlarni olasiz."
	accessRejectedMessage    = "❌ So'rovingiz rad etildi."
	noPendingRequestsMessage = "Ko'rib chiqilishi kerak so'rovlar yo'q."

	purgeDoneMessage = "✅ Bugungi ma'lumotlar tozalandi."

	revokeUsageMessage  = "Foydalanish: /bekor <foydalanuvchi ID>"
	notRecipientMessage = "Bu foydalanuvchiga ruxsat berilmagan."
)

func submissionAcceptedMessage(className string, total, present int) string {
	return fmt.Sprintf("✅ %s davomad qabul qilindi: %d/%d", className, total, present)
}

func submissionUpdatedMessage(className string, total, present int) string {
	return fmt.Sprintf("✅ %s yangilandi: %d/%d", className, total, present)
}

func lateUpdateMessage(className, studentName, keyword string, dayTotal, dayPresent int) string {
	return fmt.Sprintf("%s yangilandi: %s %s\nBugun jami %d dan %d kishi keldi",
		className, studentName, keyword, dayTotal, dayPresent)
}

func revokeDoneMessage(userID int64) string {
	return fmt.Sprintf("✅ %d uchun ruxsat bekor qilindi.", userID)
}

func accessRequestPrompt(username string, userID int64) string {
	who := fmt.Sprintf("foydalanuvchi %d", userID)
	if username != "" {
		who = "@" + username
	}
	return fmt.Sprintf("🔔 Yangi ruxsat so'rovi: %s", who)
}
