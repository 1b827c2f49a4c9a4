package institutional

// records holds the static institutional blocks per language.
var records = map[string]Record{
	"am": {
		About: `የአማራ ሚዲያ ኮርፖሬሽን (AMC) በአማራ ክልል መንግስት የተቋቋመ የመንግስት ሚዲያ ድርጅት ነው። 
ኮርፖሬሽኑ በአማራ ክልል ውስጥ እና ከክልሉ ውጭ ያሉ ህዝቦችን በተለያዩ መድረኮች በመድረስ፣ ትክክለኛ መረጃ በማድረስ እና 
በመዘዴያዊ መንገድ በማስተላለፍ የህብረተሰቡን እውቀት፣ ግንዛቤ እና ተሳትፎ ለማሳደግ ይሰራል።`,
		Mission: `ተልዕኮ፡
• ለህብረተሰቡ ትክክለኛ፣ ወቅታዊ እና አስፈላጊ መረጃዎችን ማድረስ
• የክልሉን እና የሀገሪቱን ልማት፣ ዕድገት እና ሰላም ለማስጠበቅ የበኩሉን አስተዋጽኦ ማድረግ
• የአካባቢውን ባህል፣ ቋንቋ እና ማንነት ለማስጠበቅ እና ለማሳደግ መስራት
• ሙያዊ፣ ነጻ እና ገለልተኛ የሆነ የመገናኛ ብዙሃን አገልግሎት መስጠት`,
		Vision: `ራዕይ፡
በ2025 ዓ.ም. በአፍሪካ ከሚገኙ የመንግስት ሚዲያ ተቋማት መካከል ምርጥ እና ተወዳዳሪ የሆነ፣ በአህጉር ደረጃ እውቅና ያለው 
የመገናኛ ብዙሃን ድርጅት መሆን።`,
		Values: `የኮርፖሬሽኑ እሴቶች፡
• ሙያዊነት
• ተዓማኒነት
• ገለልተኝነት
• ቅንነት
• ተጠያቂነት`,
	},
	"en": {
		About: `Amhara Media Corporation (AMC) is a state-owned media organization established by the Amhara Regional Government. 
The corporation works to reach people both within and outside the Amhara region through various platforms, delivering accurate 
information and methodically transmitting it to enhance public knowledge, awareness, and participation.`,
		Mission: `Mission:
• Deliver accurate, timely, and essential information to the public
• Contribute to the region's and country's development, growth, and peace
• Work to preserve and promote local culture, language, and identity
• Provide professional, independent, and impartial media services`,
		Vision: `Vision:
To become one of Africa's leading and competitive state media institutions by 2025, recognized at the continental level.`,
		Values: `Our Values:
• Professionalism
• Reliability
• Impartiality
• Integrity
• Accountability`,
	},
}
