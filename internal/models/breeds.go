package models

import "sort"

// breeds maps a breed key to its display name.
var breeds = map[string]string{
	"affenpinscher": "Affenpinscher",
	"afghanHound": "Afghan Hound",
	"airedaleTerrier": "Airedale Terrier",
	"akita": "Akita",
	"alaskanMalamute": "Alaskan Malamute",
	"americanBulldog": "American Bulldog",
	"americanCockerSpaniel": "American Cocker Spaniel",
	"americanEskimoDog": "American Eskimo Dog",
	"americanFoxhound": "American Foxhound",
	"americanHairlessTerrier": "American Hairless Terrier",
	"americanPitBullTerrier": "American Pit Bull Terrier",
	"americanStaffordshireTerrier": "American Staffordshire Terrier",
	"americanWaterSpaniel": "American Water Spaniel",
	"anatolianShepherdDog": "Anatolian Shepherd Dog",
	"appenzellerSennenhund": "Appenzeller Sennenhund",
	"australianCattleDog": "Australian Cattle Dog",
	"australianKelpie": "Australian Kelpie",
	"australianShepherd": "Australian Shepherd",
	"australianStumpyTailCattleDog": "Australian Stumpy Tail Cattle Dog",
	"australianTerrier": "Australian Terrier",
	"azawakh": "Azawakh",
	"barbet": "Barbet",
	"basenji": "Basenji",
	"bassetFauveDeBretagne": "Basset Fauve de Bretagne",
	"bassetHound": "Basset Hound",
	"bavarianMountainScentHound": "Bavarian Mountain Scent Hound",
	"beagle": "Beagle",
	"beardedCollie": "Bearded Collie",
	"beauceron": "Beauceron",
	"bedlingtonTerrier": "Bedlington Terrier",
	"belgianLaekenois": "Belgian Laekenois",
	"belgianMalinois": "Belgian Malinois",
	"belgianSheepdog": "Belgian Sheepdog",
	"belgianTervuren": "Belgian Tervuren",
	"bergamasco": "Bergamasco",
	"bergerPicard": "Berger Picard",
	"berneseMountainDog": "Bernese Mountain Dog",
	"bichonFrise": "Bichon Frise",
	"blackAndTanCoonhound": "Black and Tan Coonhound",
	"blackRussianTerrier": "Black Russian Terrier",
	"bloodhound": "Bloodhound",
	"borderCollie": "Border Collie",
	"borderTerrier": "Border Terrier",
	"borzoi": "Borzoi",
	"bostonTerrier": "Boston Terrier",
	"bouvierDesFlandres": "Bouvier des Flandres",
	"boxer": "Boxer",
	"boykinSpaniel": "Boykin Spaniel",
	"brindleHound": "Brindle Hound",
	"briard": "Briard",
	"brittany": "Brittany",
	"brusselsGriffon": "Brussels Griffon",
	"bullTerrier": "Bull Terrier",
	"bulldog": "Bulldog",
	"bullmastiff": "Bullmastiff",
	"cairnTerrier": "Cairn Terrier",
	"caneCorso": "Cane Corso",
	"cardiganWelshCorgi": "Cardigan Welsh Corgi",
	"carolinaDog": "Carolina Dog",
	"catahoulaLeopardDog": "Catahoula Leopard Dog",
	"caucasianShepherdDog": "Caucasian Shepherd Dog",
	"cavalierKingCharlesSpaniel": "Cavalier King Charles Spaniel",
	"centralAsianShepherdDog": "Central Asian Shepherd Dog",
	"chesapeakeBayRetriever": "Chesapeake Bay Retriever",
	"chihuahua": "Chihuahua",
	"chineseCrested": "Chinese Crested",
	"chineseSharPei": "Chinese Shar-Pei",
	"chinook": "Chinook",
	"chowChow": "Chow Chow",
	"clumberSpaniel": "Clumber Spaniel",
	"cockerSpaniel": "Cocker Spaniel",
	"collie": "Collie",
	"cotonDeTulear": "Coton de Tuléar",
	"curlyCoatedRetriever": "Curly-Coated Retriever",
	"dachshund": "Dachshund",
	"dalmatian": "Dalmatian",
	"dandieDinmontTerrier": "Dandie Dinmont Terrier",
	"denmarkFeist": "Denmark Feist",
	"dobermanPinscher": "Doberman Pinscher",
	"dogoArgentino": "Dogo Argentino",
	"dogueDeBordeaux": "Dogue de Bordeaux",
	"dutchShepherd": "Dutch Shepherd",
	"englishCockerSpaniel": "English Cocker Spaniel",
	"englishFoxhound": "English Foxhound",
	"englishSetter": "English Setter",
	"englishSpringerSpaniel": "English Springer Spaniel",
	"englishToySpaniel": "English Toy Spaniel",
	"entlebucher": "Entlebucher Mountain Dog",
	"fieldSpaniel": "Field Spaniel",
	"finnishLapphund": "Finnish Lapphund",
	"finnishSpitz": "Finnish Spitz",
	"flatCoatedRetriever": "Flat-Coated Retriever",
	"frenchBulldog": "French Bulldog",
	"germanPinscher": "German Pinscher",
	"germanShepherd": "German Shepherd",
	"germanShorthairedPointer": "German Shorthaired Pointer",
	"germanWirehairedPointer": "German Wirehaired Pointer",
	"giantSchnauzer": "Giant Schnauzer",
	"glenOfImaalTerrier": "Glen of Imaal Terrier",
	"goldenRetriever": "Golden Retriever",
	"gordonSetter": "Gordon Setter",
	"greatDane": "Great Dane",
	"greatPyrenees": "Great Pyrenees",
	"greaterSwissMountainDog": "Greater Swiss Mountain Dog",
	"greyhound": "Greyhound",
	"harrier": "Harrier",
	"havanese": "Havanese",
	"ibizanHound": "Ibizan Hound",
	"icelandicSheepdog": "Icelandic Sheepdog",
	"irishRedAndWhiteSetter": "Irish Red and White Setter",
	"irishSetter": "Irish Setter",
	"irishTerrier": "Irish Terrier",
	"irishWolfhound": "Irish Wolfhound",
	"italianGreyhound": "Italian Greyhound",
	"japaneseChin": "Japanese Chin",
	"japaneseSpitz": "Japanese Spitz",
	"keeshond": "Keeshond",
	"kerryBlueTerrier": "Kerry Blue Terrier",
	"kingCharlesSpaniel": "King Charles Spaniel",
	"komondor": "Komondor",
	"kuvasz": "Kuvasz",
	"labradorRetriever": "Labrador Retriever",
	"lagottoRomagnolo": "Lagotto Romagnolo",
	"lakelandTerrier": "Lakeland Terrier",
	"leonberger": "Leonberger",
	"lhasaApso": "Lhasa Apso",
	"lowchen": "Löwchen",
	"maltese": "Maltese",
	"manchesterTerrier": "Manchester Terrier",
	"mastiff": "Mastiff",
	"miniatureBullTerrier": "Miniature Bull Terrier",
	"miniaturePinscher": "Miniature Pinscher",
	"miniatureSchnauzer": "Miniature Schnauzer",
	"neapolitanMastiff": "Neapolitan Mastiff",
	"newfoundland": "Newfoundland",
	"norfolkTerrier": "Norfolk Terrier",
	"norwegianBuhund": "Norwegian Buhund",
	"norwegianElkhound": "Norwegian Elkhound",
	"norwegianLundehund": "Norwegian Lundehund",
	"norwichTerrier": "Norwich Terrier",
	"oldEnglishSheepdog": "Old English Sheepdog",
	"otterhound": "Otterhound",
	"papillon": "Papillon",
	"parsonRussellTerrier": "Parson Russell Terrier",
	"pekinese": "Pekingese",
	"pembrokeWelshCorgi": "Pembroke Welsh Corgi",
	"petitBassetGriffonVendeen": "Petit Basset Griffon Vendéen",
	"pharaohHound": "Pharaoh Hound",
	"plottHound": "Plott Hound",
	"pointer": "Pointer",
	"polishLowlandSheepdog": "Polish Lowland Sheepdog",
	"pomeranian": "Pomeranian",
	"poodle": "Poodle",
	"portuguesePodengo": "Portuguese Podengo",
	"portugueseWaterDog": "Portuguese Water Dog",
	"pug": "Pug",
	"puli": "Puli",
	"pyreneanShepherd": "Pyrenean Shepherd",
	"ratTerrier": "Rat Terrier",
	"redboneCoonhound": "Redbone Coonhound",
	"rhodesianRidgeback": "Rhodesian Ridgeback",
	"rottweiler": "Rottweiler",
	"saintBernard": "Saint Bernard",
	"saluki": "Saluki",
	"samoyed": "Samoyed",
	"schipperke": "Schipperke",
	"scottishDeerhound": "Scottish Deerhound",
	"scottishTerrier": "Scottish Terrier",
	"sealyhamTerrier": "Sealyham Terrier",
	"shetlandSheepdog": "Shetland Sheepdog",
	"shibaInu": "Shiba Inu",
	"shihTzu": "Shih Tzu",
	"siberianHusky": "Siberian Husky",
	"silkyTerrier": "Silky Terrier",
	"skyeTerrier": "Skye Terrier",
	"smoothFoxTerrier": "Smooth Fox Terrier",
	"softCoatedWheatenTerrier": "Soft Coated Wheaten Terrier",
	"spanishWaterDog": "Spanish Water Dog",
	"spinoneItaliano": "Spinone Italiano",
	"staffordshireBullTerrier": "Staffordshire Bull Terrier",
	"standardSchnauzer": "Standard Schnauzer",
	"sussexSpaniel": "Sussex Spaniel",
	"swedishVallhund": "Swedish Vallhund",
	"tibetanMastiff": "Tibetan Mastiff",
	"tibetanSpaniel": "Tibetan Spaniel",
	"tibetanTerrier": "Tibetan Terrier",
	"toyFoxTerrier": "Toy Fox Terrier",
	"treeingWalkerCoonhound": "Treeing Walker Coonhound",
	"vizsla": "Vizsla",
	"weimaraner": "Weimaraner",
	"welshSpringerSpaniel": "Welsh Springer Spaniel",
	"welshTerrier": "Welsh Terrier",
	"westHighlandWhiteTerrier": "West Highland White Terrier",
	"whippet": "Whippet",
	"wireFoxTerrier": "Wire Fox Terrier",
	"wirehairedPointingGriffon": "Wirehaired Pointing Griffon",
	"xoloitzcuintli": "Xoloitzcuintli",
	"yorkshireTerrier": "Yorkshire Terrier",
}

// BreedLabel returns the display name of a breed key. Unknown keys are
// returned unchanged so free-text breeds from older records still render.
func BreedLabel(key string) string {
	if label, ok := breeds[key]; ok {
		return label
	}
	return key
}

// KnownBreed reports whether key is in the breed catalog.
func KnownBreed(key string) bool {
	_, ok := breeds[key]
	return ok
}

// BreedOption is a select option for the breed picker.
type BreedOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// BreedOptions returns the catalog sorted by label.
func BreedOptions() []BreedOption {
	opts := make([]BreedOption, 0, len(breeds))
	for k, v := range breeds {
		opts = append(opts, BreedOption{Value: k, Label: v})
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Label < opts[j].Label })
	return opts
}
